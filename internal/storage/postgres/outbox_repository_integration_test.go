package postgres

import (
	"errors"
	"testing"

	"github.com/kovlou/storefront/internal/domain"
)

func TestOutboxRepository_PostgresEnqueuePullAndMark(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOutboxRepository(store)

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.placed",
		Payload:       []byte(`{"total_minor":3000000}`),
	})
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated outbox id")
	}

	second, err := repo.Enqueue(domain.OutboxMessage{
		ID:            "outbox-fixed",
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.status_changed",
		Payload:       []byte(`{"status":"paid"}`),
	})
	if err != nil {
		t.Fatalf("enqueue second: %v", err)
	}
	if second.ID != "outbox-fixed" {
		t.Fatalf("expected preserved id, got %s", second.ID)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Fatalf("expected FIFO order, first=%s got=%s", first.ID, pending[0].ID)
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(second.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	left, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull after marks: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(left))
	}

	if err := repo.MarkSent("missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish for unknown id, got %v", err)
	}
}
