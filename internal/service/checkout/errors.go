package checkout

import (
	"fmt"
	"strings"

	"github.com/kovlou/storefront/internal/domain"
)

// InvalidRequestError — ошибки уровня запроса: контактные поля или пустая
// корзина. Запрос отклоняется до каких-либо мутаций (HTTP 400).
type InvalidRequestError struct {
	Errs []error
}

func (e *InvalidRequestError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return "invalid checkout request: " + strings.Join(parts, "; ")
}

// AllItemsRejectedError возвращается, когда ни одна позиция корзины не прошла.
// Заказ не персистится; список отклонений отдаётся клиенту (HTTP 404).
type AllItemsRejectedError struct {
	Rejected []domain.RejectedItem
}

func (e *AllItemsRejectedError) Error() string {
	return fmt.Sprintf("all %d cart items were rejected", len(e.Rejected))
}

// PersistenceError — сток по принятым позициям уже списан, но заказ записать
// не удалось. Компенсирующего отката нет: расхождение подлежит ручной сверке
// и обязано остаться видимым, а не раствориться в общем 500.
type PersistenceError struct {
	// Accepted — позиции, чей сток уже списан.
	Accepted []domain.OrderLine
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order persistence failed after %d stock decrements: %v", len(e.Accepted), e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
