package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Нагрузочный прогон оформления заказов через HTTP API.
// Все воркеры бьют в один товар, чтобы проверить отсутствие
// пересписания стока под конкуренцией.

type config struct {
	baseURL     string
	total       int
	concurrency int
	timeout     time.Duration
	productID   string
	qty         int32
	userTag     string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	Total           int64            `json:"total"`
	Created         int64            `json:"created"`
	AllRejected     int64            `json:"all_rejected"`
	BadRequests     int64            `json:"bad_requests"`
	ServerErrors    int64            `json:"server_errors"`
	TransportErrors int64            `json:"transport_errors"`
	RPS             float64          `json:"rps"`
	LatencyMs       latencySummary   `json:"latency_ms"`
	UnitsAccepted   int64            `json:"units_accepted"`
	StockBefore     int32            `json:"stock_before"`
	StockAfter      int32            `json:"stock_after"`
	StatusCounts    map[string]int64 `json:"status_counts"`
}

type collector struct {
	mu            sync.Mutex
	statusCounts  map[string]int64
	latencies     []float64
	unitsAccepted int64
}

func newCollector() *collector {
	return &collector{statusCounts: make(map[string]int64)}
}

func (c *collector) record(status string, latency time.Duration, unitsAccepted int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCounts[status]++
	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
	c.unitsAccepted += unitsAccepted
}

func parseConfig() (config, error) {
	var cfg config
	var timeoutValue string
	var qty int

	flag.StringVar(&cfg.baseURL, "addr", "http://localhost:8080", "checkout API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total checkout attempts")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&cfg.productID, "product", "", "product id all workers order (required)")
	flag.IntVar(&qty, "qty", 1, "units per checkout attempt")
	flag.StringVar(&cfg.userTag, "user-tag", "load", "user id prefix")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout
	cfg.qty = int32(qty)

	if cfg.total <= 0 {
		return cfg, errors.New("total must be > 0")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if qty <= 0 {
		return cfg, errors.New("qty must be > 0")
	}
	if strings.TrimSpace(cfg.productID) == "" {
		return cfg, errors.New("product is required")
	}
	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")

	return cfg, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.timeout}

	stockBefore, err := fetchStock(client, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fetch product before run: %v\n", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var wg sync.WaitGroup
	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				runCheckout(client, cfg, id, runID, col)
			}
		}()
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	duration := time.Since(startedAt)

	stockAfter, err := fetchStock(client, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fetch product after run: %v\n", err)
		os.Exit(1)
	}

	result := buildReport(col, cfg, startedAt, duration, stockBefore, stockAfter)
	printReport(result)

	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	sold := int64(stockBefore - stockAfter)
	if sold != result.UnitsAccepted {
		_, _ = fmt.Fprintf(os.Stderr,
			"STOCK MISMATCH: decremented %d units but orders accepted %d\n", sold, result.UnitsAccepted)
		os.Exit(1)
	}
	if result.ServerErrors > 0 || result.TransportErrors > 0 {
		os.Exit(1)
	}
}

type placedResponse struct {
	OrderID    string `json:"order_id"`
	TotalMinor int64  `json:"total_minor"`
	Rejected   []struct {
		Reason string `json:"reason"`
	} `json:"rejected"`
}

func runCheckout(client *http.Client, cfg config, index int, runID string, col *collector) {
	body := map[string]interface{}{
		"user_id": fmt.Sprintf("%s-%s-%d", cfg.userTag, runID, index),
		"contact": map[string]string{
			"name":    "Load Tester",
			"email":   fmt.Sprintf("load+%d@example.sn", index),
			"phone":   "+221770000000",
			"address": "Plateau, Dakar",
		},
		"items": []map[string]interface{}{
			{"product_id": cfg.productID, "qty": cfg.qty},
		},
	}
	raw, _ := json.Marshal(body)

	start := time.Now()
	resp, err := client.Post(cfg.baseURL+"/api/orders", "application/json", bytes.NewReader(raw))
	latency := time.Since(start)
	if err != nil {
		col.record("transport_error", latency, 0)
		return
	}
	defer resp.Body.Close()

	units := int64(0)
	if resp.StatusCode == http.StatusCreated {
		var placed placedResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&placed); decodeErr == nil && len(placed.Rejected) == 0 {
			units = int64(cfg.qty)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	col.record(fmt.Sprintf("%d", resp.StatusCode), latency, units)
}

func fetchStock(client *http.Client, cfg config) (int32, error) {
	resp, err := client.Get(cfg.baseURL + "/api/products/" + cfg.productID)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("product %s returned %d", cfg.productID, resp.StatusCode)
	}
	var product struct {
		Stock int32 `json:"stock"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return 0, err
	}
	return product.Stock, nil
}

func buildReport(col *collector, cfg config, startedAt time.Time, duration time.Duration, stockBefore, stockAfter int32) report {
	col.mu.Lock()
	defer col.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Total:           int64(cfg.total),
		LatencyMs:       buildLatencySummary(col.latencies),
		UnitsAccepted:   col.unitsAccepted,
		StockBefore:     stockBefore,
		StockAfter:      stockAfter,
		StatusCounts:    make(map[string]int64, len(col.statusCounts)),
	}
	for status, count := range col.statusCounts {
		result.StatusCounts[status] = count
		switch status {
		case "201":
			result.Created = count
		case "404":
			result.AllRejected = count
		case "400":
			result.BadRequests = count
		case "transport_error":
			result.TransportErrors = count
		default:
			if strings.HasPrefix(status, "5") {
				result.ServerErrors += count
			}
		}
	}
	if duration > 0 {
		result.RPS = float64(result.Total) / duration.Seconds()
	}
	return result
}

func printReport(result report) {
	fmt.Println("Checkout load test summary")
	fmt.Printf("total=%d created=%d all_rejected=%d bad=%d 5xx=%d transport=%d\n",
		result.Total, result.Created, result.AllRejected,
		result.BadRequests, result.ServerErrors, result.TransportErrors)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.LatencyMs.Min, result.LatencyMs.Avg, result.LatencyMs.P50,
		result.LatencyMs.P95, result.LatencyMs.P99, result.LatencyMs.Max)
	fmt.Printf("stock: before=%d after=%d accepted_units=%d\n",
		result.StockBefore, result.StockAfter, result.UnitsAccepted)
}

func writeJSONReport(path string, result report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
