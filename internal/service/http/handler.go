package httpsvc

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// OrderService — операции жизненного цикла, которые нужны HTTP-слою.
type OrderService interface {
	Create(ctx context.Context, items []domain.OrderItem) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, statusFilter string) ([]domain.Order, error)
	Update(ctx context.Context, id string, in orders.UpdateOrderInput) (domain.Order, error)
	Cancel(ctx context.Context, id string) (domain.Order, error)
	Timeline(ctx context.Context, id string) ([]domain.TimelineEvent, error)
}

const errInvalidBody = "invalid request body"

// OrderHandler переводит HTTP-запросы в вызовы OrderService.
type OrderHandler struct {
	svc    OrderService
	logger *log.Entry
}

// NewOrderHandler создаёт обработчик заказов.
func NewOrderHandler(svc OrderService, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &OrderHandler{svc: svc, logger: logger}
}

// CreateOrder обрабатывает POST /api/v1/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody})
		return
	}

	items, err := toDomainItems(req.Items)
	if err != nil {
		h.writeError(c, err)
		return
	}

	order, err := h.svc.Create(c.Request.Context(), items)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListOrders обрабатывает GET /api/v1/orders[?status=...].
func (h *OrderHandler) ListOrders(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(list))
}

// GetOrder обрабатывает GET /api/v1/orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// UpdateOrder обрабатывает PUT /api/v1/orders/:id.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody})
		return
	}

	var in orders.UpdateOrderInput
	if req.itemsPresent() {
		raw, err := req.decodeItems()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody})
			return
		}
		items, err := toDomainItems(raw)
		if err != nil {
			h.writeError(c, err)
			return
		}
		in.Items = &items
	}
	if req.Status != nil {
		status, err := domain.ParseOrderStatus(*req.Status)
		if err != nil {
			h.writeError(c, err)
			return
		}
		in.Status = &status
	}

	order, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// CancelOrder обрабатывает DELETE /api/v1/orders/:id.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// OrderTimeline обрабатывает GET /api/v1/orders/:id/timeline.
func (h *OrderHandler) OrderTimeline(c *gin.Context) {
	id := c.Param("id")
	events, err := h.svc.Timeline(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimelineResponse(id, events))
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, errorResponse{Error: msg})
}

// statusFromError сопоставляет категорию доменной ошибки с HTTP-статусом.
func statusFromError(err error) int {
	switch {
	case domain.IsValidation(err), domain.IsInvalidState(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
