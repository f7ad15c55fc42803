package memory

import (
	"sync"
	"time"

	"github.com/kovlou/storefront/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
// Условный декремент выполняется под мьютексом, что даёт ту же гарантию
// атомарности, которую в Postgres обеспечивает условный UPDATE.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductAlreadyExists
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// DecrementStock списывает qty единиц, только если остатка достаточно.
// Проверка и запись выполняются под одним захватом мьютекса: конкурирующие
// оформления не могут обе пройти проверку на одном остатке.
func (r *productRepositoryInMemory) DecrementStock(id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.Stock < qty {
		return product, domain.ErrInsufficientStock
	}

	product.Stock -= qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

// Restock атомарно увеличивает остаток на qty.
func (r *productRepositoryInMemory) Restock(id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	product.Stock += qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
