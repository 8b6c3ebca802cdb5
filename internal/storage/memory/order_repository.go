package memory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Option настраивает in-memory репозиторий.
type Option func(*orderRepositoryInMemory)

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(r *orderRepositoryInMemory) {
		if clock != nil {
			r.now = clock
		}
	}
}

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	now   func() time.Time
}

// NewOrderRepository возвращает in-memory репозиторий. Данные живут до перезапуска процесса.
func NewOrderRepository(opts ...Option) domain.OrderRepository {
	r := &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	if err := checkInvariants(order); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order.Clone()
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// List возвращает заказы в порядке создания, опционально фильтруя по статусу.
func (r *orderRepositoryInMemory) List(filter *domain.OrderStatus) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if filter != nil && order.Status != *filter {
			continue
		}
		result = append(result, order.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.Order{}, domain.ErrOrderVersionConflict
	}
	if err := checkInvariants(withIdentity(current, order)); err != nil {
		return domain.Order{}, err
	}
	return r.storeLocked(current, order), nil
}

// Update выполняет read-modify-write под блокировкой: конкурентные изменения одного заказа сериализуются.
func (r *orderRepositoryInMemory) Update(id string, mutate func(order *domain.Order) error) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	draft := current.Clone()
	if err := mutate(&draft); err != nil {
		return domain.Order{}, err
	}
	if err := checkInvariants(withIdentity(current, draft)); err != nil {
		return domain.Order{}, err
	}
	return r.storeLocked(current, draft), nil
}

// Count возвращает количество заказов.
func (r *orderRepositoryInMemory) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// storeLocked фиксирует новую версию заказа. Вызывается под r.mu.
func (r *orderRepositoryInMemory) storeLocked(current, next domain.Order) domain.Order {
	next = withIdentity(current, next)

	// UpdatedAt строго растёт при каждой принятой мутации.
	now := r.now().UTC()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Nanosecond)
	}
	next.UpdatedAt = now
	next.Version = current.Version + 1

	stored := next.Clone()
	r.items[stored.ID] = stored
	return next.Clone()
}

// withIdentity возвращает next с ID и CreatedAt из current: они назначаются один раз при создании.
func withIdentity(current, next domain.Order) domain.Order {
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	return next
}

// checkInvariants не пускает в хранилище заказ без позиций, с неизвестным статусом и т.п.
func checkInvariants(order domain.Order) error {
	return errors.Join(order.ValidateInvariants()...)
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
