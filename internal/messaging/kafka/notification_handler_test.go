package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/service/notify"
	"github.com/kovlou/storefront/internal/storage/memory"
)

func placedEnvelope(orderID string) []byte {
	return []byte(`{"id":"outbox-1","aggregate_type":"order","aggregate_id":"` + orderID + `","event_type":"order.placed","payload":{}}`)
}

func storedOrder(t *testing.T, repo domain.OrderRepository, publicID string) domain.Order {
	t.Helper()
	now := time.Now().UTC()
	order := domain.Order{
		ID:       "id-" + publicID,
		PublicID: publicID,
		Contact: domain.Contact{
			Name:    "Fatou Sow",
			Email:   "fatou@example.com",
			Phone:   "+221770000001",
			Address: "Plateau, Dakar",
		},
		Items: []domain.OrderLine{
			{ID: "line-1", ProductID: "p-1", Qty: 2, UnitPriceMinor: 500000, CreatedAt: now},
		},
		TotalMinor: 1000000,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("store order: %v", err)
	}
	return order
}

func TestNotificationHandler_SendsConfirmation(t *testing.T) {
	orders := memory.NewOrderRepository()
	storedOrder(t, orders, "ord-1")
	notifier := notify.NewMockService()

	handler := NewNotificationHandler(orders, notifier, nil)

	msg := &sarama.ConsumerMessage{Topic: TopicOrderEvents, Value: placedEnvelope("ord-1")}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if notifier.CallCount() != 1 {
		t.Fatalf("expected 1 confirmation, got %d", notifier.CallCount())
	}
	if notifier.SendCalls[0].PublicID != "ord-1" {
		t.Errorf("confirmation for wrong order: %s", notifier.SendCalls[0].PublicID)
	}
}

func TestNotificationHandler_IgnoresOtherEvents(t *testing.T) {
	orders := memory.NewOrderRepository()
	notifier := notify.NewMockService()
	handler := NewNotificationHandler(orders, notifier, nil)

	msg := &sarama.ConsumerMessage{
		Topic: TopicOrderEvents,
		Value: []byte(`{"aggregate_id":"ord-2","event_type":"order.status_changed","payload":{}}`),
	}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if notifier.CallCount() != 0 {
		t.Fatalf("expected no confirmations, got %d", notifier.CallCount())
	}
}

func TestNotificationHandler_MalformedMessageIsSkipped(t *testing.T) {
	orders := memory.NewOrderRepository()
	notifier := notify.NewMockService()
	handler := NewNotificationHandler(orders, notifier, nil)

	msg := &sarama.ConsumerMessage{Topic: TopicOrderEvents, Value: []byte("{not json")}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("malformed message must not be retried: %v", err)
	}
}

func TestNotificationHandler_UnknownOrderFails(t *testing.T) {
	orders := memory.NewOrderRepository()
	notifier := notify.NewMockService()
	handler := NewNotificationHandler(orders, notifier, nil)

	msg := &sarama.ConsumerMessage{Topic: TopicOrderEvents, Value: placedEnvelope("missing")}
	if err := handler(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown order")
	}
}
