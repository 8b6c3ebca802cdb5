package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderAlreadyExists, если ID занят.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// List возвращает все заказы или только заказы с указанным статусом (если filter != nil).
	List(filter *OrderStatus) ([]Order, error)
	// Save перезаписывает заказ с учётом optimistic locking и проставляет UpdatedAt.
	Save(order Order) (Order, error)
	// Update атомарно применяет mutate к текущему состоянию заказа.
	// Если mutate вернул ошибку, хранилище не меняется.
	Update(id string, mutate func(order *Order) error) (Order, error)
	// Count возвращает количество сохранённых заказов.
	Count() int
}
