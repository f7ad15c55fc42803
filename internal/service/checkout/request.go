package checkout

import (
	"strings"

	"github.com/kovlou/storefront/internal/domain"
)

// ItemRequest — одна запрошенная позиция корзины в исходном виде.
type ItemRequest struct {
	ProductID string
	Qty       int32
}

// PlaceOrderRequest — входной запрос оформления заказа.
type PlaceOrderRequest struct {
	// UserID пустой для гостевого оформления.
	UserID  string
	Contact domain.Contact
	Items   []ItemRequest
}

// Validate проверяет запрос целиком и возвращает нормализованную копию.
// Ошибки уровня запроса (контакты, пустая корзина) отклоняют оформление
// целиком до каких-либо обращений к хранилищу; некорректность отдельных
// позиций здесь не проверяется — её разбирает сам workflow попозиционно.
func (r PlaceOrderRequest) Validate() (PlaceOrderRequest, error) {
	var errs []error

	errs = append(errs, r.Contact.Validate()...)
	if len(r.Items) == 0 {
		errs = append(errs, domain.ErrOrderItemsRequired)
	}

	if len(errs) > 0 {
		return PlaceOrderRequest{}, &InvalidRequestError{Errs: errs}
	}

	validated := PlaceOrderRequest{
		UserID:  strings.TrimSpace(r.UserID),
		Contact: r.Contact.Normalize(),
		Items:   make([]ItemRequest, len(r.Items)),
	}
	for i, item := range r.Items {
		validated.Items[i] = ItemRequest{
			ProductID: strings.TrimSpace(item.ProductID),
			Qty:       item.Qty,
		}
	}

	return validated, nil
}

// PlaceOrderResult — результат успешного оформления. Rejected непустой
// при частичном успехе: заказ создан, но часть позиций не прошла.
type PlaceOrderResult struct {
	Order    domain.Order
	Rejected []domain.RejectedItem
}
