package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики workflow оформления заказа.
type CheckoutMetrics struct {
	// Счётчики результатов оформления
	ordersPlaced   prometheus.Counter
	ordersRejected prometheus.Counter
	itemsRejected  *prometheus.CounterVec

	// Гистограмма времени оформления
	checkoutDuration prometheus.Histogram

	// Аномалии "сток списан, заказ не записан" — требуют ручной сверки.
	reconciliationAnomalies prometheus.Counter

	// Ошибки best-effort уведомлений
	notificationFailures prometheus.Counter

	// События, поставленные в outbox
	outboxEvents prometheus.Counter
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders successfully placed",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_rejected_total",
			Help: "Total number of checkout requests where every item was rejected",
		}),
		itemsRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_items_rejected_total",
			Help: "Total number of rejected cart items grouped by reason",
		}, []string{"reason"}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of checkout workflow invocations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		reconciliationAnomalies: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_reconciliation_anomalies_total",
			Help: "Orders whose stock was decremented but whose order document failed to persist",
		}),
		notificationFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_notification_failures_total",
			Help: "Total number of failed order confirmation notifications",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of events enqueued to the transactional outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик успешно оформленных заказов.
func (m *CheckoutMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderRejected увеличивает счётчик полностью отклонённых корзин.
func (m *CheckoutMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordItemRejected увеличивает счётчик отклонённых позиций по причине.
func (m *CheckoutMetrics) RecordItemRejected(reason string) {
	m.itemsRejected.WithLabelValues(reason).Inc()
}

// RecordCheckoutDuration записывает время выполнения оформления.
func (m *CheckoutMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordReconciliationAnomaly фиксирует расхождение "сток списан, заказ не записан".
func (m *CheckoutMetrics) RecordReconciliationAnomaly() {
	m.reconciliationAnomalies.Inc()
}

// RecordNotificationFailure увеличивает счётчик неудачных уведомлений.
func (m *CheckoutMetrics) RecordNotificationFailure() {
	m.notificationFailures.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CheckoutMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
