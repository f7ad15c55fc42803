package rest

import (
	"time"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/service/checkout"
)

// contactDTO — контактные данные покупателя в wire-формате.
type contactDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// itemDTO — позиция корзины в запросе оформления.
type itemDTO struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// placeOrderDTO — тело POST /api/orders.
type placeOrderDTO struct {
	UserID  string     `json:"user_id"`
	Contact contactDTO `json:"contact"`
	Items   []itemDTO  `json:"items"`
}

func (d placeOrderDTO) toRequest() checkout.PlaceOrderRequest {
	items := make([]checkout.ItemRequest, len(d.Items))
	for i, item := range d.Items {
		items[i] = checkout.ItemRequest{ProductID: item.ProductID, Qty: item.Qty}
	}
	return checkout.PlaceOrderRequest{
		UserID: d.UserID,
		Contact: domain.Contact{
			Name:    d.Contact.Name,
			Email:   d.Contact.Email,
			Phone:   d.Contact.Phone,
			Address: d.Contact.Address,
		},
		Items: items,
	}
}

// rejectedItemDTO — отклонённая позиция в ответе.
type rejectedItemDTO struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
	Reason    string `json:"reason"`
	Requested int32  `json:"requested,omitempty"`
	Available int32  `json:"available,omitempty"`
}

func toRejectedDTOs(rejected []domain.RejectedItem) []rejectedItemDTO {
	if len(rejected) == 0 {
		return nil
	}
	out := make([]rejectedItemDTO, len(rejected))
	for i, item := range rejected {
		out[i] = rejectedItemDTO{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Reason:    string(item.Reason),
			Requested: item.Requested,
			Available: item.Available,
		}
	}
	return out
}

// orderLineDTO — строка заказа в ответе.
type orderLineDTO struct {
	ProductID      string `json:"product_id"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// orderDTO — заказ в ответе API. Наружу уходит только публичный идентификатор.
type orderDTO struct {
	OrderID    string         `json:"order_id"`
	UserID     string         `json:"user_id,omitempty"`
	Contact    contactDTO     `json:"contact"`
	Items      []orderLineDTO `json:"items"`
	TotalMinor int64          `json:"total_minor"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toOrderDTO(order domain.Order) orderDTO {
	lines := make([]orderLineDTO, len(order.Items))
	for i, line := range order.Items {
		lines[i] = orderLineDTO{
			ProductID:      line.ProductID,
			Qty:            line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
		}
	}
	return orderDTO{
		OrderID: order.PublicID,
		UserID:  order.UserID,
		Contact: contactDTO{
			Name:    order.Contact.Name,
			Email:   order.Contact.Email,
			Phone:   order.Contact.Phone,
			Address: order.Contact.Address,
		},
		Items:      lines,
		TotalMinor: order.TotalMinor,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// placeOrderResponseDTO — ответ на успешное оформление (HTTP 201).
type placeOrderResponseDTO struct {
	OrderID    string            `json:"order_id"`
	TotalMinor int64             `json:"total_minor"`
	Status     string            `json:"status"`
	Rejected   []rejectedItemDTO `json:"rejected,omitempty"`
}

// productDTO — товар каталога в ответе API.
type productDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock"`
}

func toProductDTO(product domain.Product) productDTO {
	return productDTO{
		ID:          product.ID,
		Name:        product.Name,
		Brand:       product.Brand,
		Category:    product.Category,
		Subcategory: product.Subcategory,
		PriceMinor:  product.PriceMinor,
		Stock:       product.Stock,
	}
}

// statusUpdateDTO — тело PATCH /api/orders/:orderId/status.
type statusUpdateDTO struct {
	Status string `json:"status"`
}
