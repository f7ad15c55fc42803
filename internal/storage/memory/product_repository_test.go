package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/storage/memory"
)

func newProduct(stock int32) domain.Product {
	return domain.Product{
		ID:         "prod-1",
		Name:       "Galaxy A14",
		Brand:      "Samsung",
		Category:   "electronics",
		PriceMinor: 19900,
		Stock:      stock,
	}
}

func TestProductRepository_CreateGet(t *testing.T) {
	repo := memory.NewProductRepository()
	product := newProduct(5)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", stored.Stock)
	}
}

func TestProductRepository_CreateDuplicate(t *testing.T) {
	repo := memory.NewProductRepository()
	product := newProduct(5)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(product); !errors.Is(err, domain.ErrProductAlreadyExists) {
		t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
	}
}

func TestProductRepository_GetMissing(t *testing.T) {
	repo := memory.NewProductRepository()

	if _, err := repo.Get("nope"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct(5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	after, err := repo.DecrementStock("prod-1", 2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if after.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", after.Stock)
	}
}

func TestProductRepository_DecrementStock_Insufficient(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct(5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	current, err := repo.DecrementStock("prod-1", 10)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if current.Stock != 5 {
		t.Fatalf("stock must stay unchanged, got %d", current.Stock)
	}
}

func TestProductRepository_DecrementStock_NotFound(t *testing.T) {
	repo := memory.NewProductRepository()

	if _, err := repo.DecrementStock("nope", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// Concurrent decrements must never drive stock negative: the sum of all
// successful decrements is bounded by the initial stock.
func TestProductRepository_DecrementStock_Concurrent(t *testing.T) {
	repo := memory.NewProductRepository()
	const initialStock = 50
	if err := repo.Create(newProduct(initialStock)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	const workers = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock("prod-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != initialStock {
		t.Fatalf("expected exactly %d successful decrements, got %d", initialStock, succeeded)
	}

	final, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if final.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", final.Stock)
	}
}

func TestProductRepository_Restock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct(1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	after, err := repo.Restock("prod-1", 9)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if after.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", after.Stock)
	}
}
