package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/service/checkout"
)

// Handler обслуживает HTTP-интерфейс оформления заказов и чтения каталога.
type Handler struct {
	checkout *checkout.Service
	products domain.ProductRepository
	logger   *log.Entry
}

// NewHandler собирает обработчик поверх сервиса оформления и репозитория каталога.
func NewHandler(checkoutSvc *checkout.Service, products domain.ProductRepository, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{
		checkout: checkoutSvc,
		products: products,
		logger:   logger.WithField("component", "rest_handler"),
	}
}

// PlaceOrder обрабатывает POST /api/orders.
//
// Карта ответов:
//
//	201 — заказ создан, возможно с частично отклонёнными позициями;
//	400 — невалидный запрос, сток не трогался;
//	404 — все позиции отклонены, заказ не создан;
//	500 — сток списан, но заказ не сохранился; аномалия для сверки.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var body placeOrderDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": []string{"malformed request body"},
		})
		return
	}

	result, err := h.checkout.PlaceOrder(c.Request.Context(), body.toRequest())
	if err != nil {
		h.writePlaceOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, placeOrderResponseDTO{
		OrderID:    result.Order.PublicID,
		TotalMinor: result.Order.TotalMinor,
		Status:     string(result.Order.Status),
		Rejected:   toRejectedDTOs(result.Rejected),
	})
}

func (h *Handler) writePlaceOrderError(c *gin.Context, err error) {
	var invalidErr *checkout.InvalidRequestError
	if errors.As(err, &invalidErr) {
		details := make([]string, len(invalidErr.Errs))
		for i, e := range invalidErr.Errs {
			details[i] = e.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": details})
		return
	}

	var rejectedErr *checkout.AllItemsRejectedError
	if errors.As(err, &rejectedErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "all_items_rejected",
			"rejected": toRejectedDTOs(rejectedErr.Rejected),
		})
		return
	}

	var persistErr *checkout.PersistenceError
	if errors.As(err, &persistErr) {
		// Детали уже в логе сервиса вместе со списанными позициями;
		// клиенту наружу уходит только непрозрачный код.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_persistence_failure"})
		return
	}

	h.logger.WithError(err).Error("place order failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

// GetOrder обрабатывает GET /api/orders/:orderId по публичному идентификатору.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.checkout.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		h.logger.WithError(err).Error("get order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(order))
}

// ListOrders обрабатывает GET /api/orders?user=...&limit=N.
func (h *Handler) ListOrders(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_user_parameter"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit_parameter"})
			return
		}
		limit = parsed
	}

	orders, err := h.checkout.ListUserOrders(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).Error("list orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	dtos := make([]orderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = toOrderDTO(order)
	}
	c.JSON(http.StatusOK, gin.H{"orders": dtos})
}

// UpdateOrderStatus обрабатывает PATCH /api/orders/:orderId/status.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var body statusUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status_body"})
		return
	}

	order, err := h.checkout.SetStatus(c.Request.Context(), c.Param("orderId"), domain.OrderStatus(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		case errors.Is(err, domain.ErrOrderStatusInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_status"})
		case errors.Is(err, domain.ErrOrderTransitionInvalid):
			c.JSON(http.StatusConflict, gin.H{"error": "invalid_status_transition"})
		default:
			h.logger.WithError(err).Error("update order status failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(order))
}

// GetProduct обрабатывает GET /api/products/:id.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.products.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		h.logger.WithError(err).Error("get product failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, toProductDTO(product))
}
