package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/metrics"
)

const (
	// EventOrderPlaced публикуется после успешной записи заказа.
	EventOrderPlaced = "order.placed"
	// EventOrderStatusChanged публикуется при смене статуса заказа.
	EventOrderStatusChanged = "order.status_changed"
)

// Service реализует workflow оформления заказа: валидация корзины,
// попозиционное списание стока, запись заказа, отчёт об отклонениях.
type Service struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	notifier domain.Notifier
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time

	notifyMu     sync.Mutex
	notifyClosed bool
	notifyWG     sync.WaitGroup
}

// NewService создаёт рабочий экземпляр workflow. Outbox и notifier опциональны:
// nil отключает соответствующий side effect.
func NewService(
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	notifier domain.Notifier,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		products: products,
		orders:   orders,
		outbox:   outbox,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics.NewCheckoutMetrics(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics создаёт workflow без метрик (для тестов).
func NewServiceWithoutMetrics(
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	notifier domain.Notifier,
	logger *log.Entry,
) *Service {
	svc := NewService(products, orders, outbox, notifier, logger)
	svc.metrics = nil
	return svc
}

// PlaceOrder превращает корзину и контактные данные либо в записанный заказ,
// либо в структурированный отчёт об отклонении. Позиции обрабатываются
// последовательно в порядке подачи; каждое списание стока независимо и
// финально — отклонение соседней позиции его не откатывает.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	validated, err := req.Validate()
	if err != nil {
		return PlaceOrderResult{}, err
	}

	now := s.now()
	accepted := make([]domain.OrderLine, 0, len(validated.Items))
	rejected := make([]domain.RejectedItem, 0)

	for _, item := range validated.Items {
		line, rej := s.processItem(item, now)
		if rej != nil {
			if s.metrics != nil {
				s.metrics.RecordItemRejected(string(rej.Reason))
			}
			rejected = append(rejected, *rej)
			continue
		}
		accepted = append(accepted, *line)
	}

	if len(accepted) == 0 {
		if s.metrics != nil {
			s.metrics.RecordOrderRejected()
		}
		return PlaceOrderResult{}, &AllItemsRejectedError{Rejected: rejected}
	}

	// После первого успешного списания отмена запроса оставляет сток
	// списанным без заказа: это та же аномалия, что и неудачная запись.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return PlaceOrderResult{}, s.persistFailure(accepted, ctxErr)
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		PublicID:   uuid.NewString(),
		UserID:     validated.UserID,
		Contact:    validated.Contact,
		Items:      accepted,
		TotalMinor: 0,
		Status:     domain.OrderStatusPending,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	order.TotalMinor = order.LinesTotal()

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return PlaceOrderResult{}, s.persistFailure(accepted, errors.Join(errs...))
	}

	if err := s.orders.Create(order); err != nil {
		return PlaceOrderResult{}, s.persistFailure(accepted, err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.logger.WithFields(log.Fields{
		"order_id":    order.PublicID,
		"user_id":     order.UserID,
		"total_minor": order.TotalMinor,
		"lines":       len(order.Items),
		"rejected":    len(rejected),
	}).Info("order placed")

	s.emitOrderEvent(&order, EventOrderPlaced, map[string]interface{}{
		"total_minor": order.TotalMinor,
		"lines":       len(order.Items),
		"email":       order.Contact.Email,
	})
	s.dispatchConfirmation(order)

	return PlaceOrderResult{Order: order, Rejected: rejected}, nil
}

// processItem проверяет и резервирует одну позицию корзины. Возвращает либо
// принятую строку заказа, либо причину отклонения; ошибки хранилища
// перехватываются локально и не прерывают обработку соседних позиций.
func (s *Service) processItem(item ItemRequest, now time.Time) (*domain.OrderLine, *domain.RejectedItem) {
	if item.ProductID == "" || item.Qty <= 0 {
		return nil, &domain.RejectedItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Reason:    domain.RejectReasonInvalidItem,
		}
	}

	if _, err := s.products.Get(item.ProductID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, &domain.RejectedItem{
				ProductID: item.ProductID,
				Qty:       item.Qty,
				Reason:    domain.RejectReasonNotFound,
			}
		}
		s.logger.WithError(err).WithField("product_id", item.ProductID).Error("product lookup failed")
		return nil, &domain.RejectedItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Reason:    domain.RejectReasonInternal,
		}
	}

	after, err := s.products.DecrementStock(item.ProductID, item.Qty)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			return nil, &domain.RejectedItem{
				ProductID: item.ProductID,
				Qty:       item.Qty,
				Reason:    domain.RejectReasonInsufficientStock,
				Requested: item.Qty,
				Available: after.Stock,
			}
		case errors.Is(err, domain.ErrProductNotFound):
			// Товар исчез между lookup и декрементом.
			return nil, &domain.RejectedItem{
				ProductID: item.ProductID,
				Qty:       item.Qty,
				Reason:    domain.RejectReasonNotFound,
			}
		default:
			s.logger.WithError(err).WithField("product_id", item.ProductID).Error("stock decrement failed")
			return nil, &domain.RejectedItem{
				ProductID: item.ProductID,
				Qty:       item.Qty,
				Reason:    domain.RejectReasonInternal,
			}
		}
	}

	// Цена фиксируется в момент списания, а не из запроса клиента.
	return &domain.OrderLine{
		ID:             uuid.NewString(),
		ProductID:      item.ProductID,
		Qty:            item.Qty,
		UnitPriceMinor: after.PriceMinor,
		CreatedAt:      now,
	}, nil
}

// persistFailure оформляет невосстановимый сбой "сток списан, заказ не записан":
// подробный лог со списком принятых позиций и отдельная метрика, чтобы
// оператор мог провести сверку вручную.
func (s *Service) persistFailure(accepted []domain.OrderLine, cause error) error {
	if s.metrics != nil {
		s.metrics.RecordReconciliationAnomaly()
	}

	lines := make([]map[string]interface{}, 0, len(accepted))
	for _, line := range accepted {
		lines = append(lines, map[string]interface{}{
			"product_id":       line.ProductID,
			"qty":              line.Qty,
			"unit_price_minor": line.UnitPriceMinor,
		})
	}
	s.logger.WithError(cause).WithField("decremented_lines", lines).
		Error("order write failed after stock decrements; manual reconciliation required")

	return &PersistenceError{Accepted: accepted, Err: cause}
}

// GetOrder возвращает заказ по публичному идентификатору.
func (s *Service) GetOrder(_ context.Context, publicID string) (domain.Order, error) {
	return s.orders.GetByPublicID(publicID)
}

// ListUserOrders возвращает заказы пользователя. Пустой userID совпадает
// с гостевыми заказами в хранилище, поэтому отсекается здесь: гостевой
// заказ доступен только по своему публичному идентификатору.
func (s *Service) ListUserOrders(_ context.Context, userID string, limit int) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	return s.orders.ListByUser(userID, limit)
}

// SetStatus выполняет административный переход статуса заказа.
// Допустимость перехода проверяется по машине состояний; конфликт версий
// разрешается повторной попыткой с exponential backoff.
func (s *Service) SetStatus(_ context.Context, publicID string, newStatus domain.OrderStatus) (domain.Order, error) {
	if !newStatus.Valid() {
		return domain.Order{}, domain.ErrOrderStatusInvalid
	}

	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		order, err := s.orders.GetByPublicID(publicID)
		if err != nil {
			return domain.Order{}, err
		}
		if order.Status == newStatus {
			return order, nil
		}
		if !domain.CanTransition(order.Status, newStatus) {
			return domain.Order{}, domain.ErrOrderTransitionInvalid
		}

		prevVersion := order.Version
		order.Status = newStatus
		order.UpdatedAt = s.now()

		if err := s.orders.Save(order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxRetries-1 {
				s.logger.WithFields(log.Fields{
					"order_id": order.PublicID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("version conflict detected, retrying")
				time.Sleep(baseDelay * time.Duration(1<<uint(attempt)))
				continue
			}
			s.logger.WithError(err).WithField("order_id", order.PublicID).Error("failed to persist status")
			return domain.Order{}, err
		}

		order.Version = prevVersion + 1
		s.emitOrderEvent(&order, EventOrderStatusChanged, map[string]interface{}{
			"status": string(order.Status),
			"ts":     order.UpdatedAt.Format(time.RFC3339Nano),
		})
		return order, nil
	}

	return domain.Order{}, domain.ErrOrderVersionConflict
}

func (s *Service) emitOrderEvent(order *domain.Order, eventType string, payload map[string]interface{}) {
	if s.outbox == nil {
		return
	}

	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.PublicID
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.PublicID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.PublicID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.PublicID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

// dispatchConfirmation запускает best-effort уведомление в фоне.
// Ошибка notifier логируется и считается в метриках, но никогда не влияет
// на результат оформления и не провоцирует повторов.
func (s *Service) dispatchConfirmation(order domain.Order) {
	if s.notifier == nil {
		return
	}

	s.notifyMu.Lock()
	if s.notifyClosed {
		s.notifyMu.Unlock()
		s.logger.WithField("order_id", order.PublicID).Warn("confirmation dispatch skipped during shutdown")
		return
	}
	s.notifyWG.Add(1)
	s.notifyMu.Unlock()

	go func() {
		defer s.notifyWG.Done()
		if err := s.notifier.SendOrderConfirmation(order); err != nil {
			if s.metrics != nil {
				s.metrics.RecordNotificationFailure()
			}
			s.logger.WithError(err).WithField("order_id", order.PublicID).Warn("order confirmation failed")
		}
	}()
}

// Shutdown ожидает завершения фоновых уведомлений.
func (s *Service) Shutdown(ctx context.Context) error {
	s.notifyMu.Lock()
	s.notifyClosed = true
	s.notifyMu.Unlock()

	waitDone := make(chan struct{})
	go func() {
		s.notifyWG.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
