package httpsvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// itemRequest — позиция заказа во входящем запросе.
// price и quantity принимаются и числом, и строкой с числом.
type itemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     json.RawMessage `json:"price"`
	Quantity  json.RawMessage `json:"quantity"`
}

type createOrderRequest struct {
	Items []itemRequest `json:"items"`
}

// updateOrderRequest: пустое Items и nil Status означают, что поле в запросе не передано.
// Items остаётся сырым, чтобы явный null отличался от отсутствующего ключа.
type updateOrderRequest struct {
	Items  json.RawMessage `json:"items"`
	Status *string         `json:"status"`
}

// itemsPresent сообщает, что ключ items был в запросе (в том числе со значением null).
func (r updateOrderRequest) itemsPresent() bool {
	return len(r.Items) > 0
}

// decodeItems разбирает items из запроса на изменение. Явный null считается пустым списком.
func (r updateOrderRequest) decodeItems() ([]itemRequest, error) {
	if isJSONNull(r.Items) {
		return nil, nil
	}
	var items []itemRequest
	if err := json.Unmarshal(r.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Total     float64 `json:"total"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Items      []orderItemResponse `json:"items"`
	TotalValue float64             `json:"total_value"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Count  int             `json:"count"`
}

type timelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred_at"`
}

type timelineResponse struct {
	OrderID string                  `json:"order_id"`
	Events  []timelineEventResponse `json:"events"`
	Count   int                     `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toDomainItems переводит позиции запроса в доменные, проверяя форму каждого поля.
func toDomainItems(items []itemRequest) ([]domain.OrderItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrItemsRequired
	}

	out := make([]domain.OrderItem, 0, len(items))
	for idx, raw := range items {
		item, err := raw.toDomain()
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid item data: items[%d]: %s", idx, err.Error()))
		}
		out = append(out, item)
	}
	return out, nil
}

func (r itemRequest) toDomain() (domain.OrderItem, error) {
	item := domain.OrderItem{
		ProductID: strings.TrimSpace(r.ProductID),
		Name:      strings.TrimSpace(r.Name),
	}
	if item.ProductID == "" {
		return domain.OrderItem{}, domain.ErrItemProductIDRequired
	}
	if item.Name == "" {
		return domain.OrderItem{}, domain.ErrItemNameRequired
	}

	price, ok := parseNumber(r.Price)
	if !ok || price.IsNegative() || price.GreaterThan(domain.MaxItemPrice) {
		return domain.OrderItem{}, domain.ErrItemPriceInvalid
	}
	item.Price = price

	qty, ok := parseNumber(r.Quantity)
	if !ok || !qty.IsInteger() || !qty.IsPositive() || !qty.LessThanOrEqual(decimal.NewFromInt(domain.MaxItemQuantity)) {
		return domain.OrderItem{}, domain.ErrItemQuantityInvalid
	}
	item.Quantity = qty.IntPart()

	return item, nil
}

// parseNumber разбирает JSON-число или строку с числом.
func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isJSONNull(raw) {
		return decimal.Decimal{}, false
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, false
		}
		text = strings.TrimSpace(s)
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
			Total:     item.LineTotal().InexactFloat64(),
		})
	}

	return orderResponse{
		ID:         order.ID,
		Items:      items,
		TotalValue: order.TotalValue().InexactFloat64(),
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.UTC(),
		UpdatedAt:  order.UpdatedAt.UTC(),
	}
}

func toListResponse(orders []domain.Order) listOrdersResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return listOrdersResponse{Orders: out, Count: len(out)}
}

func toTimelineResponse(orderID string, events []domain.TimelineEvent) timelineResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, timelineEventResponse{Type: e.Type, Reason: e.Reason, Occurred: e.Occurred.UTC()})
	}
	return timelineResponse{OrderID: orderID, Events: out, Count: len(out)}
}
