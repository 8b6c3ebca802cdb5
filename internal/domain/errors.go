package domain

import "errors"

// Категории ошибок. HTTP-слой выбирает код ответа по ним через errors.Is.
var (
	// ErrValidation — некорректный или отсутствующий ввод.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — запрошенный объект не существует.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — операция запрещена текущим статусом заказа.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict — конкурентная запись или занятый идентификатор.
	ErrConflict = errors.New("conflict")
)

// Error — доменная ошибка с человекочитаемым сообщением и категорией.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap отдаёт категорию, чтобы работал errors.Is(err, ErrValidation) и т.п.
func (e *Error) Unwrap() error { return e.kind }

// NewValidationError создаёт ошибку валидации с указанным сообщением.
func NewValidationError(msg string) error {
	return &Error{kind: ErrValidation, msg: msg}
}

var (
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = NewValidationError("order must contain at least one item")
	// Ошибка отсутствующего идентификатора товара.
	ErrItemProductIDRequired = NewValidationError("product_id is required")
	// Ошибка отсутствующего названия товара.
	ErrItemNameRequired = NewValidationError("name is required")
	// Ошибка отрицательной цены позиции.
	ErrItemPriceInvalid = NewValidationError("price must be a non-negative number")
	// Ошибка некорректного количества (не целое или <= 0).
	ErrItemQuantityInvalid = NewValidationError("quantity must be a positive integer")
	// ErrNoUpdateData: в запросе на изменение нет ни items, ни status.
	ErrNoUpdateData = NewValidationError("no update data provided")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = NewValidationError("order id is required")
	// Ошибка нарушения порядка временных меток.
	ErrTimestampsInvalid = NewValidationError("updated_at must not be before created_at")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = &Error{kind: ErrNotFound, msg: "order not found"}

	// ErrCancelledOrderUpdate — попытка изменить отменённый заказ.
	ErrCancelledOrderUpdate = &Error{kind: ErrInvalidState, msg: "cannot update a cancelled order"}
	// ErrOrderAlreadyCancelled — повторная отмена.
	ErrOrderAlreadyCancelled = &Error{kind: ErrInvalidState, msg: "order is already cancelled"}

	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = &Error{kind: ErrConflict, msg: "order version conflict"}
	// ErrOrderAlreadyExists — заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = &Error{kind: ErrConflict, msg: "order already exists"}
)

// IsValidation проверяет, относится ли ошибка к ошибкам валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound проверяет, что объект не найден.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState проверяет, что операция запрещена статусом.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsConflict проверяет, что операция конфликтует с текущим состоянием хранилища.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
