package main

import (
	"math"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := percentile(sorted, 50); got != 5.5 {
		t.Fatalf("p50 = %v, want 5.5", got)
	}
	if got := percentile(sorted, 100); got != 10 {
		t.Fatalf("p100 = %v, want 10", got)
	}
	if got := percentile(sorted, 0); got != 1 {
		t.Fatalf("p0 = %v, want 1", got)
	}
	if got := percentile([]float64{42}, 95); got != 42 {
		t.Fatalf("single value p95 = %v, want 42", got)
	}
	if got := percentile(nil, 95); got != 0 {
		t.Fatalf("empty p95 = %v, want 0", got)
	}
}

func TestBuildLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{3, 1, 2})

	if summary.Min != 1 || summary.Max != 3 {
		t.Fatalf("min/max = %v/%v, want 1/3", summary.Min, summary.Max)
	}
	if math.Abs(summary.Avg-2.0) > 1e-9 {
		t.Fatalf("avg = %v, want 2", summary.Avg)
	}
	if summary.P50 != 2 {
		t.Fatalf("p50 = %v, want 2", summary.P50)
	}

	empty := buildLatencySummary(nil)
	if empty != (latencySummary{}) {
		t.Fatalf("expected zero summary for empty input, got %+v", empty)
	}
}

func TestCollectorRecord(t *testing.T) {
	col := newCollector()
	col.record("201", 5*time.Millisecond, 2)
	col.record("201", 7*time.Millisecond, 2)
	col.record("404", time.Millisecond, 0)

	if col.statusCounts["201"] != 2 || col.statusCounts["404"] != 1 {
		t.Fatalf("unexpected status counts: %v", col.statusCounts)
	}
	if col.unitsAccepted != 4 {
		t.Fatalf("unitsAccepted = %d, want 4", col.unitsAccepted)
	}
	if len(col.latencies) != 3 {
		t.Fatalf("expected 3 latency samples, got %d", len(col.latencies))
	}
}

func TestBuildReport_Classification(t *testing.T) {
	col := newCollector()
	col.record("201", time.Millisecond, 1)
	col.record("404", time.Millisecond, 0)
	col.record("400", time.Millisecond, 0)
	col.record("500", time.Millisecond, 0)
	col.record("503", time.Millisecond, 0)
	col.record("transport_error", time.Millisecond, 0)

	cfg := config{total: 6, qty: 1}
	result := buildReport(col, cfg, time.Now(), time.Second, 10, 9)

	if result.Created != 1 || result.AllRejected != 1 || result.BadRequests != 1 {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.ServerErrors != 2 {
		t.Fatalf("ServerErrors = %d, want 2", result.ServerErrors)
	}
	if result.TransportErrors != 1 {
		t.Fatalf("TransportErrors = %d, want 1", result.TransportErrors)
	}
	if result.UnitsAccepted != 1 {
		t.Fatalf("UnitsAccepted = %d, want 1", result.UnitsAccepted)
	}
	if result.StockBefore != 10 || result.StockAfter != 9 {
		t.Fatalf("stock fields wrong: %+v", result)
	}
	if result.RPS != 6 {
		t.Fatalf("RPS = %v, want 6", result.RPS)
	}
}
