package app

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kovlou/storefront/internal/domain"
	"github.com/kovlou/storefront/internal/messaging/kafka"
)

// Messaging объединяет Kafka-компоненты приложения. Все поля nil,
// если брокеры не заданы.
type Messaging struct {
	Producer  *kafka.Producer
	Publisher domain.OutboxPublisher
	DLQ       domain.OutboxPublisher
	Consumer  *kafka.Consumer
}

// initMessaging поднимает producer, публикаторы outbox и консьюмер
// подтверждений заказов. Пустые брокеры выключают messaging целиком.
func initMessaging(cfg Config, orders domain.OrderRepository, notifier domain.Notifier, logger *log.Entry) (*Messaging, error) {
	if cfg.KafkaBrokers == "" {
		logger.Info("kafka не настроен, события остаются в outbox")
		return &Messaging{}, nil
	}

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		return nil, err
	}
	logger.WithField("brokers", brokers).Info("kafka producer initialized")

	m := &Messaging{
		Producer:  producer,
		Publisher: kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
		DLQ:       kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue),
	}

	handler := kafka.NewNotificationHandler(orders, notifier, logger)
	consumer, err := kafka.NewConsumerWithDLQ(
		brokers,
		cfg.KafkaConsumerGroup,
		[]string{kafka.TopicOrderEvents},
		handler,
		producer,
		cfg.OutboxMaxAttempts,
	)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}
	m.Consumer = consumer

	return m, nil
}

// DirectNotifier выбирает notifier для синхронной цепочки оформления.
// При работающем консьюмере подтверждения идут через outbox и Kafka,
// прямой вызов отключается, иначе каждый заказ подтверждался бы дважды.
func (m *Messaging) DirectNotifier(notifier domain.Notifier) domain.Notifier {
	if m.Consumer != nil {
		return nil
	}
	return notifier
}

// startConsumer запускает консьюмер уведомлений в фоне.
func (m *Messaging) startConsumer(ctx context.Context, logger *log.Entry) {
	if m.Consumer == nil {
		return
	}
	go func() {
		if err := m.Consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("notification consumer stopped with error")
		}
	}()
}

// Close останавливает консьюмер и закрывает producer.
func (m *Messaging) Close(logger *log.Entry) {
	if m.Consumer != nil {
		if err := m.Consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop notification consumer")
		}
	}
	if m.Producer != nil {
		if err := m.Producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			logger.Info("kafka producer closed")
		}
	}
}
