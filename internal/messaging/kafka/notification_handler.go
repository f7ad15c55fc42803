package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
)

// NewNotificationHandler строит обработчик топика событий заказов, который
// на каждое событие `order.placed` отправляет покупателю подтверждение.
// Ошибка notifier возвращается наружу: consumer повторит обработку и после
// исчерпания попыток переложит сообщение в DLQ.
func NewNotificationHandler(orders domain.OrderRepository, notifier domain.Notifier, logger *log.Entry) MessageHandler {
	if logger == nil {
		logger = log.New().WithField("component", "notification-handler")
	}

	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		envelope, err := ParseEnvelope(message)
		if err != nil {
			// Непарсимое сообщение не станет парсимым при повторе.
			logger.WithError(err).WithFields(log.Fields{
				"topic":  message.Topic,
				"offset": message.Offset,
			}).Error("skipping malformed event")
			return nil
		}

		switch EventType(envelope.EventType) {
		case EventTypeOrderPlaced:
		case EventTypeOrderStatusChanged:
			// Статусные события подтверждений не порождают.
			return nil
		default:
			return nil
		}

		order, err := orders.GetByPublicID(envelope.AggregateID)
		if err != nil {
			return fmt.Errorf("load order %s: %w", envelope.AggregateID, err)
		}
		if err := notifier.SendOrderConfirmation(order); err != nil {
			return fmt.Errorf("send confirmation for %s: %w", order.PublicID, err)
		}

		logger.WithField("order_id", order.PublicID).Info("order confirmation dispatched")
		return nil
	}
}
