package memory_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newOrder(id string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID: id,
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		},
		Status:    domain.OrderStatusConfirmed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// fixedClock возвращает часы, которые можно двигать вручную.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 order, got %d", repo.Count())
	}
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	require.NoError(t, repo.Create(order))

	err := repo.Create(order)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	repo := memory.NewOrderRepository()

	_, err := repo.Get("missing")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_GetReturnsCopy(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	require.NoError(t, repo.Create(order))

	// Мутация исходного слайса и полученного снимка не должна попадать в хранилище.
	order.Items[0].Name = "Mutated"
	got, err := repo.Get("order-1")
	require.NoError(t, err)
	got.Items[0].Name = "Mutated too"

	again, err := repo.Get("order-1")
	require.NoError(t, err)
	require.Equal(t, "Widget", again.Items[0].Name)
}

func TestOrderRepository_List(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := newOrder("b-order", base)
	second := newOrder("a-order", base.Add(time.Second))
	third := newOrder("c-order", base.Add(2*time.Second))
	third.Status = domain.OrderStatusCancelled
	for _, o := range []domain.Order{third, first, second} {
		require.NoError(t, repo.Create(o))
	}

	all, err := repo.List(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"b-order", "a-order", "c-order"}, ids(all))

	confirmed := domain.OrderStatusConfirmed
	onlyConfirmed, err := repo.List(&confirmed)
	require.NoError(t, err)
	require.Equal(t, []string{"b-order", "a-order"}, ids(onlyConfirmed))

	cancelled := domain.OrderStatusCancelled
	onlyCancelled, err := repo.List(&cancelled)
	require.NoError(t, err)
	require.Equal(t, []string{"c-order"}, ids(onlyCancelled))
}

func TestOrderRepository_ListEmpty(t *testing.T) {
	repo := memory.NewOrderRepository()

	orders, err := repo.List(nil)
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
}

func TestOrderRepository_Save(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := memory.NewOrderRepository(memory.WithClock(clock.Now))
	order := newOrder("order-1", clock.Now())
	require.NoError(t, repo.Create(order))

	stored, err := repo.Get(order.ID)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	stored.Items[0].Quantity = 5
	saved, err := repo.Save(stored)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get(order.ID)
	require.NoError(t, err)

	if updated.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", updated.Items[0].Quantity)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
	require.Equal(t, clock.Now(), updated.UpdatedAt)
	require.Equal(t, saved.UpdatedAt, updated.UpdatedAt)
	require.Equal(t, order.CreatedAt, updated.CreatedAt)
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	require.NoError(t, repo.Create(order))

	order.Version = 42
	if _, err := repo.Save(order); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict error, got %v", err)
	}
}

func TestOrderRepository_SaveNotFound(t *testing.T) {
	repo := memory.NewOrderRepository()

	_, err := repo.Save(newOrder("missing", time.Now().UTC()))
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_UpdatedAtAlwaysAdvances(t *testing.T) {
	// Часы стоят на месте: UpdatedAt всё равно должен расти.
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewOrderRepository(memory.WithClock(func() time.Time { return frozen }))
	require.NoError(t, repo.Create(newOrder("order-1", frozen)))

	prev := frozen
	for i := 0; i < 3; i++ {
		updated, err := repo.Update("order-1", func(o *domain.Order) error { return nil })
		require.NoError(t, err)
		require.True(t, updated.UpdatedAt.After(prev), "iteration %d: %v not after %v", i, updated.UpdatedAt, prev)
		prev = updated.UpdatedAt
	}
}

func TestOrderRepository_UpdateMutateErrorLeavesStoreUntouched(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	require.NoError(t, repo.Create(order))
	before, err := repo.Get("order-1")
	require.NoError(t, err)

	_, err = repo.Update("order-1", func(o *domain.Order) error {
		o.Status = domain.OrderStatusCancelled
		o.Items = nil
		return domain.ErrCancelledOrderUpdate
	})
	require.ErrorIs(t, err, domain.ErrCancelledOrderUpdate)

	after, err := repo.Get("order-1")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestOrderRepository_UpdateKeepsIdentity(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())
	require.NoError(t, repo.Create(order))

	updated, err := repo.Update("order-1", func(o *domain.Order) error {
		o.ID = "hijacked"
		o.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "order-1", updated.ID)
	require.Equal(t, order.CreatedAt, updated.CreatedAt)

	_, err = repo.Get("hijacked")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_UpdateNotFound(t *testing.T) {
	repo := memory.NewOrderRepository()

	called := false
	_, err := repo.Update("missing", func(o *domain.Order) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.False(t, called)
}

func TestOrderRepository_ConcurrentCreatesAndUpdates(t *testing.T) {
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(newOrder("shared", time.Now().UTC())))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(newOrder(fmt.Sprintf("order-%d", i), time.Now().UTC()))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.Update("shared", func(o *domain.Order) error {
				o.Items[0].Quantity++
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, workers+1, repo.Count())
	shared, err := repo.Get("shared")
	require.NoError(t, err)
	// Ни одно инкрементирование не потеряно.
	require.Equal(t, int64(2+workers), shared.Items[0].Quantity)
	require.Equal(t, int64(workers), shared.Version)
}

func ids(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestOrderRepository_RejectsBrokenInvariants(t *testing.T) {
	repo := memory.NewOrderRepository()

	empty := newOrder("empty", time.Now().UTC())
	empty.Items = nil
	require.ErrorIs(t, repo.Create(empty), domain.ErrValidation)
	require.Equal(t, 0, repo.Count())

	require.NoError(t, repo.Create(newOrder("order-1", time.Now().UTC())))
	before, err := repo.Get("order-1")
	require.NoError(t, err)

	_, err = repo.Update("order-1", func(o *domain.Order) error {
		o.Items = []domain.OrderItem{}
		return nil
	})
	require.ErrorIs(t, err, domain.ErrItemsRequired)

	broken := before
	broken.Status = "shipped"
	_, err = repo.Save(broken)
	require.ErrorIs(t, err, domain.ErrValidation)

	after, err := repo.Get("order-1")
	require.NoError(t, err)
	require.Equal(t, before, after)
}
