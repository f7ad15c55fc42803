package domain

import "errors"

var (
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceInvalid = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrProductStockInvalid = errors.New("product stock must be non-negative")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock возвращается атомарным декрементом, когда
	// остатка не хватает на запрошенное количество.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductAlreadyExists сигнализирует о дубликате при создании товара.
	ErrProductAlreadyExists = errors.New("product already exists")

	// Ошибка отсутствующего имени покупателя.
	ErrContactNameRequired = errors.New("contact name is required")
	// Ошибка отсутствующего email.
	ErrContactEmailRequired = errors.New("contact email is required")
	// Ошибка синтаксически некорректного email.
	ErrContactEmailInvalid = errors.New("contact email is invalid")
	// Ошибка отсутствующего телефона.
	ErrContactPhoneRequired = errors.New("contact phone is required")
	// Ошибка отсутствующего адреса доставки.
	ErrContactAddressRequired = errors.New("contact address is required")

	// Ошибка отсутствующего публичного идентификатора заказа.
	ErrOrderPublicIDRequired = errors.New("order public id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrOrderItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrOrderTotalNegative = errors.New("order total must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrOrderTotalMismatch = errors.New("order total does not match items sum")
	// Ошибка неподдерживаемого статуса заказа.
	ErrOrderStatusInvalid = errors.New("order status is not supported")
	// Ошибка недопустимого перехода статуса.
	ErrOrderTransitionInvalid = errors.New("order status transition is not allowed")
	// Ошибка отсутствующей ссылки на товар в позиции.
	ErrLineProductRequired = errors.New("order line product id is required")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("order line qty must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrLinePriceInvalid = errors.New("order line price must be non-negative")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о дубликате при создании заказа.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
