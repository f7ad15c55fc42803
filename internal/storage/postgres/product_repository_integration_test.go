package postgres

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kovlou/storefront/internal/domain"
)

func sampleProduct(id string, priceMinor int64, stock int32, now time.Time) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "product " + id,
		Brand:       "brand",
		Category:    "clothing",
		Subcategory: "tshirts",
		PriceMinor:  priceMinor,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductRepository_PostgresCreateGetDecrement(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	product := sampleProduct("prod-1", 2500000, 10, now)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := repo.Create(product); !errors.Is(err, domain.ErrProductAlreadyExists) {
		t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
	}

	got, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.PriceMinor != 2500000 || got.Stock != 10 {
		t.Fatalf("unexpected product payload: %+v", got)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	after, err := repo.DecrementStock("prod-1", 4)
	if err != nil {
		t.Fatalf("decrement stock: %v", err)
	}
	if after.Stock != 6 {
		t.Fatalf("expected stock 6 after decrement, got %d", after.Stock)
	}

	remaining, err := repo.DecrementStock("prod-1", 100)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if remaining.Stock != 6 {
		t.Fatalf("rejected decrement must report current stock 6, got %d", remaining.Stock)
	}

	if _, err := repo.DecrementStock("missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	restocked, err := repo.Restock("prod-1", 10)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if restocked.Stock != 16 {
		t.Fatalf("expected stock 16 after restock, got %d", restocked.Stock)
	}
}

func TestProductRepository_PostgresConcurrentDecrement(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleProduct("prod-limited", 1000000, 50, now)); err != nil {
		t.Fatalf("create product: %v", err)
	}

	const workers = 100
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock("prod-limited", 1); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	if count != 50 {
		t.Fatalf("expected exactly 50 successful decrements, got %d", count)
	}

	final, err := repo.Get("prod-limited")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if final.Stock != 0 {
		t.Fatalf("expected final stock 0, got %d", final.Stock)
	}
}
