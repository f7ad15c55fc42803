package domain

import (
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа после оформления.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, сток уже списан, оплата не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid — оплата подтверждена администратором/провайдером.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCancelled — заказ отменён до оплаты.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition проверяет допустимость перехода статуса.
// Разрешены только pending→paid, paid→shipped и pending→cancelled;
// сам workflow оформления никогда не меняет статус после создания.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusShipped
	default:
		return false
	}
}

// Contact содержит контактные данные покупателя.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Normalize возвращает копию с обрезанными пробелами; email дополнительно
// приводится к нижнему регистру, чтобы хранение и поиск были согласованы.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// Validate проверяет обязательность полей после нормализации.
func (c Contact) Validate() []error {
	n := c.Normalize()

	var errs []error
	if n.Name == "" {
		errs = append(errs, ErrContactNameRequired)
	}
	if n.Email == "" {
		errs = append(errs, ErrContactEmailRequired)
	} else if !strings.Contains(n.Email, "@") {
		errs = append(errs, ErrContactEmailInvalid)
	}
	if n.Phone == "" {
		errs = append(errs, ErrContactPhoneRequired)
	}
	if n.Address == "" {
		errs = append(errs, ErrContactAddressRequired)
	}

	return errs
}

// OrderLine представляет одну позицию заказа.
type OrderLine struct {
	ID string
	// ProductID — ссылка на товар каталога.
	ProductID string
	// Qty — количество единиц, всегда >= 1.
	Qty int32
	// UnitPriceMinor — цена за единицу, зафиксированная в момент списания стока.
	// Не перечитывается из каталога, чтобы исторические заказы оставались точными.
	UnitPriceMinor int64
	CreatedAt      time.Time
}

// Order агрегирует оформленный заказ и его позиции.
type Order struct {
	// ID — внутренний идентификатор хранилища.
	ID string
	// PublicID — клиентский трекинг-токен; генерируется workflow,
	// никогда не переиспользуется и безопасен для гостевых заказов.
	PublicID string
	// UserID пустой для гостевого оформления.
	UserID  string
	Contact Contact
	Items   []OrderLine
	// TotalMinor всегда пересчитывается из позиций: Σ(qty × unit_price).
	TotalMinor int64
	Status     OrderStatus
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LinesTotal возвращает сумму позиций заказа.
func (o *Order) LinesTotal() int64 {
	var total int64
	for _, line := range o.Items {
		total += int64(line.Qty) * line.UnitPriceMinor
	}
	return total
}

// ValidateInvariants проверяет инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.PublicID == "" {
		errs = append(errs, ErrOrderPublicIDRequired)
	}
	errs = append(errs, o.Contact.Validate()...)
	if len(o.Items) == 0 {
		errs = append(errs, ErrOrderItemsRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrOrderTotalNegative)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}

	for _, line := range o.Items {
		if line.ProductID == "" {
			errs = append(errs, ErrLineProductRequired)
		}
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}
	if o.LinesTotal() != o.TotalMinor {
		errs = append(errs, ErrOrderTotalMismatch)
	}

	return errs
}
