package notify

import (
	"sync"

	"github.com/kovlou/storefront/internal/domain"
)

// MockService — конфигурируемый notifier для тестов.
type MockService struct {
	mu sync.Mutex

	// SendErr возвращается каждым вызовом SendOrderConfirmation.
	SendErr error
	// SendCalls накапливает переданные заказы.
	SendCalls []domain.Order
}

// NewMockService создаёт mock с настройками по умолчанию (всегда успех).
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) SendOrderConfirmation(order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCalls = append(m.SendCalls, order)
	return m.SendErr
}

// CallCount возвращает число выполненных отправок.
func (m *MockService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendCalls)
}

var _ domain.Notifier = (*MockService)(nil)
