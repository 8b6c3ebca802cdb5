package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

const (
	operationCreate = "create"
	operationGet    = "get"
	operationList   = "list"
	operationUpdate = "update"
	operationCancel = "cancel"
)

// UpdateOrderInput описывает частичное изменение заказа. Поля независимы, но хотя бы одно должно быть задано.
type UpdateOrderInput struct {
	// Items заменяет список позиций целиком; nil, если поле не передано.
	Items *[]domain.OrderItem
	// Status: новый статус; nil, если поле не передано.
	Status *domain.OrderStatus
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени для создания заказов и событий.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов заказов.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Service реализует жизненный цикл заказа поверх репозитория.
type Service struct {
	repo      domain.OrderRepository
	timeline  domain.TimelineRepository
	publisher domain.EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry

	now   func() time.Time
	newID func() string
}

// NewService конструирует сервис. timeline, publisher и metrics могут быть nil.
func NewService(
	repo domain.OrderRepository,
	timeline domain.TimelineRepository,
	publisher domain.EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	s := &Service{
		repo:      repo,
		timeline:  timeline,
		publisher: publisher,
		metrics:   orderMetrics,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создаёт подтверждённый заказ из непустого списка корректных позиций.
func (s *Service) Create(ctx context.Context, items []domain.OrderItem) (domain.Order, error) {
	defer s.observe(operationCreate, time.Now())

	order, err := domain.NewOrder(s.newID(), items, s.now())
	if err != nil {
		return domain.Order{}, s.reject(operationCreate, "", err)
	}

	if err := s.repo.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to create order")
		return domain.Order{}, s.reject(operationCreate, order.ID, err)
	}

	s.metrics.RecordOrderCreated(string(order.Status))
	s.appendTimeline(order.ID, domain.TimelineOrderCreated, "", order.CreatedAt)
	s.publish(ctx, domain.OrderEventCreated, order)

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"items":       len(order.Items),
		"total_value": order.TotalValue().String(),
	}).Info("order created")

	return order, nil
}

// Get возвращает заказ или ошибку категории ErrNotFound.
func (s *Service) Get(_ context.Context, id string) (domain.Order, error) {
	defer s.observe(operationGet, time.Now())

	order, err := s.repo.Get(id)
	if err != nil {
		return domain.Order{}, s.reject(operationGet, id, err)
	}
	return order, nil
}

// List возвращает все заказы или заказы с указанным статусом.
// Пустой фильтр означает «без фильтра», неизвестный статус даёт ошибку валидации.
func (s *Service) List(_ context.Context, statusFilter string) ([]domain.Order, error) {
	defer s.observe(operationList, time.Now())

	var filter *domain.OrderStatus
	if statusFilter != "" {
		status, err := domain.ParseOrderStatus(statusFilter)
		if err != nil {
			return nil, s.reject(operationList, "", err)
		}
		filter = &status
	}

	orders, err := s.repo.List(filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to list orders")
		return nil, s.reject(operationList, "", err)
	}
	return orders, nil
}

// Update применяет новые позиции и/или статус атомарно.
// Отменённый заказ отклоняется до применения любого из полей.
func (s *Service) Update(ctx context.Context, id string, in UpdateOrderInput) (domain.Order, error) {
	defer s.observe(operationUpdate, time.Now())

	if err := validateUpdate(in); err != nil {
		return domain.Order{}, s.reject(operationUpdate, id, err)
	}

	var before domain.Order
	updated, err := s.repo.Update(id, func(order *domain.Order) error {
		before = order.Clone()

		if in.Items != nil {
			target := domain.TargetStatus(order.Status, domain.OperationUpdateItems, "")
			if err := domain.CheckTransition(order.Status, domain.OperationUpdateItems, target); err != nil {
				return err
			}
		}
		if in.Status != nil {
			if err := domain.CheckTransition(order.Status, domain.OperationSetStatus, *in.Status); err != nil {
				return err
			}
		}

		if in.Items != nil {
			order.Items = domain.CloneItems(*in.Items)
		}
		if in.Status != nil {
			order.Status = *in.Status
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, s.reject(operationUpdate, id, err)
	}

	s.metrics.RecordOrderUpdated()
	s.metrics.RecordStatusChange(string(before.Status), string(updated.Status))

	if in.Items != nil {
		s.appendTimeline(id, domain.TimelineOrderItemsUpdated, "", updated.UpdatedAt)
	}
	eventType := domain.OrderEventUpdated
	if before.Status != updated.Status {
		s.appendTimeline(id, domain.TimelineOrderStatusChanged, string(updated.Status), updated.UpdatedAt)
		if updated.Status.Terminal() {
			s.appendTimeline(id, domain.TimelineOrderCancelled, "status update", updated.UpdatedAt)
			eventType = domain.OrderEventCancelled
		}
	}
	s.publish(ctx, eventType, updated)

	s.logger.WithFields(log.Fields{
		"order_id":      id,
		"items_changed": in.Items != nil,
		"status":        updated.Status,
	}).Info("order updated")

	return updated, nil
}

// Cancel переводит подтверждённый заказ в cancelled. Повторная отмена возвращает ошибку состояния.
func (s *Service) Cancel(ctx context.Context, id string) (domain.Order, error) {
	defer s.observe(operationCancel, time.Now())

	var before domain.Order
	cancelled, err := s.repo.Update(id, func(order *domain.Order) error {
		before = order.Clone()
		target := domain.TargetStatus(order.Status, domain.OperationCancel, "")
		if err := domain.CheckTransition(order.Status, domain.OperationCancel, target); err != nil {
			return err
		}
		order.Status = target
		return nil
	})
	if err != nil {
		return domain.Order{}, s.reject(operationCancel, id, err)
	}

	s.metrics.RecordStatusChange(string(before.Status), string(cancelled.Status))
	s.appendTimeline(id, domain.TimelineOrderStatusChanged, string(cancelled.Status), cancelled.UpdatedAt)
	s.appendTimeline(id, domain.TimelineOrderCancelled, "cancel request", cancelled.UpdatedAt)
	s.publish(ctx, domain.OrderEventCancelled, cancelled)

	s.logger.WithField("order_id", id).Info("order cancelled")

	return cancelled, nil
}

// Timeline возвращает события жизненного цикла существующего заказа.
func (s *Service) Timeline(ctx context.Context, id string) ([]domain.TimelineEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.timeline == nil {
		return []domain.TimelineEvent{}, nil
	}
	events, err := s.timeline.List(id)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("failed to load timeline")
		return nil, err
	}
	return events, nil
}

// validateUpdate проверяет форму запроса до обращения к хранилищу.
func validateUpdate(in UpdateOrderInput) error {
	if in.Items == nil && in.Status == nil {
		return domain.ErrNoUpdateData
	}
	if in.Items != nil {
		if err := domain.ValidateItems(*in.Items); err != nil {
			return err
		}
	}
	if in.Status != nil {
		if _, err := domain.ParseOrderStatus(string(*in.Status)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) appendTimeline(orderID, eventType, reason string, at time.Time) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{OrderID: orderID, Type: eventType, Reason: reason, Occurred: at}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"type":     eventType,
		}).Warn("failed to append timeline event")
		return
	}
	s.metrics.RecordTimelineEvent()
}

// publish отправляет событие после фиксации мутации; ошибка только логируется.
func (s *Service) publish(ctx context.Context, eventType domain.OrderEventType, order domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{Type: eventType, Order: order.Clone(), OccurredAt: s.now().UTC()}
	err := s.publisher.Publish(context.WithoutCancel(ctx), event)
	s.metrics.RecordEventPublished(err)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("failed to publish order event")
	}
}

func (s *Service) reject(operation, orderID string, err error) error {
	reason := rejectReason(err)
	s.metrics.RecordRejected(operation, reason)
	s.logger.WithFields(log.Fields{
		"operation": operation,
		"order_id":  orderID,
		"reason":    reason,
	}).WithError(err).Debug("order operation rejected")
	return err
}

func (s *Service) observe(operation string, started time.Time) {
	s.metrics.RecordOperationDuration(operation, time.Since(started))
}

func rejectReason(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsInvalidState(err):
		return "invalid_state"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
