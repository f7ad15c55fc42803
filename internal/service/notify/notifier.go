package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
)

// Service — notifier, который пишет подтверждение заказа в структурированный
// лог. В локальной разработке заменяет внешний почтовый шлюз; в production
// подтверждения уходят через Kafka-консьюмер уведомлений.
type Service struct {
	logger *log.Entry
}

// NewService создаёт лог-ориентированный notifier.
func NewService(logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "notify")
	}
	return &Service{logger: logger}
}

// SendOrderConfirmation пишет сводку заказа получателю в лог.
func (s *Service) SendOrderConfirmation(order domain.Order) error {
	s.logger.WithFields(log.Fields{
		"order_id":    order.PublicID,
		"email":       order.Contact.Email,
		"name":        order.Contact.Name,
		"total_minor": order.TotalMinor,
		"lines":       len(order.Items),
	}).Info("order confirmation sent")
	return nil
}

var _ domain.Notifier = (*Service)(nil)
