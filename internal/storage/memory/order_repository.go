package memory

import (
	"sort"
	"sync"

	"github.com/kovlou/storefront/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Заказы индексируются по публичному идентификатору: это единственный ключ,
// известный клиенту.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, если публичный ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.PublicID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	order.Items = cloneLines(order.Items)
	r.items[order.PublicID] = order
	return nil
}

// GetByPublicID возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryInMemory) GetByPublicID(publicID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[publicID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = cloneLines(order.Items)
	return order, nil
}

// ListByUser возвращает заказы пользователя, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		order.Items = cloneLines(order.Items)
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].PublicID > result[j].PublicID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
// Позиции не перезаписываются: после создания они неизменяемы.
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.PublicID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}

	current.Status = order.Status
	current.UpdatedAt = order.UpdatedAt
	current.Version++
	r.items[order.PublicID] = current
	return nil
}

func cloneLines(lines []domain.OrderLine) []domain.OrderLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.OrderLine, len(lines))
	copy(out, lines)
	return out
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
