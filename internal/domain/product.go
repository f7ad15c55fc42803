package domain

import "time"

// Product описывает позицию каталога витрины.
type Product struct {
	ID string
	// Name — отображаемое название товара.
	Name string
	// Brand — производитель, может быть пустым.
	Brand string
	// Category и Subcategory задают место товара в дереве каталога.
	Category    string
	Subcategory string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Stock — доступный остаток; единственное поле, которое чек-аут
	// изменяет через атомарный условный декремент.
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrProductStockInvalid)
	}

	return errs
}
