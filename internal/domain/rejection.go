package domain

// RejectReason — код причины отклонения позиции корзины.
type RejectReason string

const (
	// RejectReasonInvalidItem — синтаксически некорректный идентификатор
	// или количество <= 0; репозиторий не вызывается.
	RejectReasonInvalidItem RejectReason = "invalid_item"
	// RejectReasonNotFound — товар отсутствует в каталоге.
	RejectReasonNotFound RejectReason = "not_found"
	// RejectReasonInsufficientStock — остатка не хватает на запрошенное количество.
	RejectReasonInsufficientStock RejectReason = "insufficient_stock"
	// RejectReasonInternal — непредвиденная ошибка хранилища при обработке позиции.
	RejectReasonInternal RejectReason = "internal_error"
)

// RejectedItem описывает отклонённую позицию корзины. Возвращается клиенту
// в ответе workflow и никогда не персистится.
type RejectedItem struct {
	ProductID string
	Qty       int32
	Reason    RejectReason
	// Requested и Available заполняются только для insufficient_stock,
	// чтобы клиент мог показать "запрошено N, доступно M".
	Requested int32
	Available int32
}
