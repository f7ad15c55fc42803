package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCheckoutMetrics(t *testing.T) {
	metrics := newCheckoutMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newCheckoutMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if metrics.ordersRejected == nil {
		t.Error("ordersRejected counter should not be nil")
	}
	if metrics.itemsRejected == nil {
		t.Error("itemsRejected counter vec should not be nil")
	}
	if metrics.checkoutDuration == nil {
		t.Error("checkoutDuration histogram should not be nil")
	}
	if metrics.reconciliationAnomalies == nil {
		t.Error("reconciliationAnomalies counter should not be nil")
	}
	if metrics.notificationFailures == nil {
		t.Error("notificationFailures counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewCheckoutMetrics_ReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newCheckoutMetricsWithRegisterer(reg)
	second := newCheckoutMetricsWithRegisterer(reg)

	// Double registration must return the existing collectors, not panic.
	if first.ordersPlaced != second.ordersPlaced {
		t.Error("expected the same ordersPlaced collector on re-registration")
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	reg := prometheus.NewRegistry()

	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_orders_placed_total",
		Help: "Test counter",
	})
	reg.MustRegister(ordersPlaced)

	metrics := &CheckoutMetrics{ordersPlaced: ordersPlaced}
	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()

	metric := &dto.Metric{}
	if err := ordersPlaced.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordItemRejected_Labels(t *testing.T) {
	reg := prometheus.NewRegistry()

	itemsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_items_rejected_total",
		Help: "Test counter vec",
	}, []string{"reason"})
	reg.MustRegister(itemsRejected)

	metrics := &CheckoutMetrics{itemsRejected: itemsRejected}
	metrics.RecordItemRejected("insufficient_stock")
	metrics.RecordItemRejected("insufficient_stock")
	metrics.RecordItemRejected("not_found")

	metric := &dto.Metric{}
	if err := itemsRejected.WithLabelValues("insufficient_stock").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected insufficient_stock counter 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordReconciliationAnomaly(t *testing.T) {
	reg := prometheus.NewRegistry()

	anomalies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_reconciliation_anomalies_total",
		Help: "Test counter",
	})
	reg.MustRegister(anomalies)

	metrics := &CheckoutMetrics{reconciliationAnomalies: anomalies}
	metrics.RecordReconciliationAnomaly()

	metric := &dto.Metric{}
	if err := anomalies.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordCheckoutDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_checkout_duration_seconds",
		Help:    "Test histogram",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(duration)

	metrics := &CheckoutMetrics{checkoutDuration: duration}
	metrics.RecordCheckoutDuration(150 * time.Millisecond)

	metric := &dto.Metric{}
	if err := duration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 sample, got %d", metric.Histogram.GetSampleCount())
	}
}
