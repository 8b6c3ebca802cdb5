package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusConfirmed — заказ принят и ещё может изменяться.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCancelled — заказ отменён, дальнейшие изменения запрещены.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses перечисляет все поддерживаемые статусы.
var OrderStatuses = []OrderStatus{OrderStatusConfirmed, OrderStatusCancelled}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled
}

// ParseOrderStatus превращает токен из запроса в статус.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", NewValidationError(fmt.Sprintf("invalid status: %s", raw))
	}
	return status, nil
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ProductID: внешний идентификатор товара из каталога.
	ProductID string
	Name      string
	// Price: цена за единицу на момент оформления, не связана с каталогом.
	Price    decimal.Decimal
	Quantity int64
}

// MaxItemPrice ограничивает цену за единицу: сумма заказа должна оставаться конечной в float64 при выдаче.
var MaxItemPrice = decimal.New(1, 12)

// MaxItemQuantity ограничивает количество в одной позиции.
const MaxItemQuantity = 1_000_000_000

// LineTotal возвращает стоимость позиции: price * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// Validate проверяет поля позиции.
func (i OrderItem) Validate() error {
	switch {
	case strings.TrimSpace(i.ProductID) == "":
		return ErrItemProductIDRequired
	case strings.TrimSpace(i.Name) == "":
		return ErrItemNameRequired
	case i.Price.IsNegative(), i.Price.GreaterThan(MaxItemPrice):
		return ErrItemPriceInvalid
	case i.Quantity <= 0, i.Quantity > MaxItemQuantity:
		return ErrItemQuantityInvalid
	}
	return nil
}

// ValidateItems проверяет список позиций целиком: он не пуст и каждая позиция корректна.
func ValidateItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrItemsRequired
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return NewValidationError(fmt.Sprintf("invalid item data: items[%d]: %s", idx, err.Error()))
		}
	}
	return nil
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID        string
	Items     []OrderItem
	Status    OrderStatus
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder собирает новый подтверждённый заказ.
func NewOrder(id string, items []OrderItem, now time.Time) (Order, error) {
	if err := ValidateItems(items); err != nil {
		return Order{}, err
	}
	now = now.UTC()
	return Order{
		ID:        id,
		Items:     CloneItems(items),
		Status:    OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TotalValue всегда пересчитывается из текущих позиций.
func (o Order) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Clone возвращает копию заказа, не разделяющую слайс позиций с оригиналом.
func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

// CloneItems копирует слайс позиций.
func CloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if err := ValidateItems(o.Items); err != nil {
		errs = append(errs, err)
	}
	if !o.Status.Valid() {
		errs = append(errs, NewValidationError(fmt.Sprintf("invalid status: %s", o.Status)))
	}
	if o.UpdatedAt.Before(o.CreatedAt) {
		errs = append(errs, ErrTimestampsInvalid)
	}

	return errs
}
