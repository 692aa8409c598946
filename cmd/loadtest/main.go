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
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	idempotencyHeader = "Idempotency-Key"
	userHeader        = "X-User-ID"

	codeOK             = "200"
	codeTransportError = "transport_error"

	defaultQty = 1
)

type loadMode string

const (
	modeBrowse       loadMode = "browse"
	modeOrder        loadMode = "order"
	modeOrderReorder loadMode = "order-reorder"
)

type config struct {
	baseURL       string
	total         int
	totalSet      bool
	duration      time.Duration
	concurrency   int
	timeout       time.Duration
	mode          loadMode
	reorderRate   int
	productID     string
	qty           int
	paymentMethod string
	userTag       string
	outputPath    string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, code string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{
			codes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if success {
		stats.success++
	} else {
		stats.failed++
	}
	stats.codes[code]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) snapshot(name string) (methodReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[name]
	if !ok {
		return methodReport{}, false
	}

	codesCopy := make(map[string]int64, len(stats.codes))
	for code, count := range stats.codes {
		codesCopy[code] = count
	}

	return methodReport{
		Calls:     stats.calls,
		Success:   stats.success,
		Failed:    stats.failed,
		ErrorRate: ratio(stats.failed, stats.calls),
		Codes:     codesCopy,
		LatencyMs: buildLatencySummary(stats.latencies),
	}, true
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "storefront API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeOrder), "load mode: browse | order | order-reorder")
	flag.IntVar(&cfg.reorderRate, "reorder-rate", 0, "reorder probability in percent for order mode (0..100)")
	flag.StringVar(&cfg.productID, "product-id", "prod-latte", "product id used for cart scenarios")
	flag.IntVar(&cfg.qty, "qty", defaultQty, "quantity per cart line")
	flag.StringVar(&cfg.paymentMethod, "payment-method", "cash", "payment method: card | cash")
	flag.StringVar(&cfg.userTag, "user-tag", "load", "user id prefix")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("base-url is required")
	}
	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.duration > 0 && cfg.totalSet && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.qty <= 0 {
		return cfg, errors.New("qty must be > 0")
	}
	if cfg.reorderRate < 0 || cfg.reorderRate > 100 {
		return cfg, errors.New("reorder-rate must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.productID) == "" {
		return cfg, errors.New("product-id is required")
	}
	if cfg.paymentMethod != "card" && cfg.paymentMethod != "cash" {
		return cfg, errors.New("payment-method must be card or cash")
	}
	if strings.TrimSpace(cfg.userTag) == "" {
		return cfg, errors.New("user-tag is required")
	}

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeBrowse:
		return modeBrowse, nil
	case modeOrder:
		return modeOrder, nil
	case modeOrderReorder:
		return modeOrderReorder, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.timeout}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(client, cfg, id, runID, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

func runScenario(
	client *http.Client,
	cfg config,
	index int,
	runID string,
	col *collector,
) error {
	scenarioStart := time.Now()
	scenarioCode := codeOK
	scenarioOK := true
	defer func() {
		col.record("scenario", time.Since(scenarioStart), scenarioCode, scenarioOK)
	}()

	userID := fmt.Sprintf("%s-%s-%d", cfg.userTag, runID, index)

	if cfg.mode == modeBrowse {
		if code, err := callListProducts(client, cfg, col); err != nil {
			scenarioCode, scenarioOK = code, false
			return err
		}
		if code, err := callGetProduct(client, cfg, col); err != nil {
			scenarioCode, scenarioOK = code, false
			return err
		}
		return nil
	}

	if code, err := callAddToCart(client, cfg, userID, col); err != nil {
		scenarioCode, scenarioOK = code, false
		return err
	}

	createKey := fmt.Sprintf("lt-create-%s-%d", runID, index)
	orderID, code, err := callCreateOrder(client, cfg, userID, createKey, col)
	if err != nil {
		scenarioCode, scenarioOK = code, false
		return err
	}
	if orderID == "" {
		scenarioCode, scenarioOK = "empty_order_id", false
		return errors.New("create response returned empty order id")
	}

	if cfg.mode == modeOrderReorder || (cfg.mode == modeOrder && shouldReorderScenario(index, cfg.reorderRate)) {
		if code, err := callReorder(client, cfg, userID, orderID, col); err != nil {
			scenarioCode, scenarioOK = code, false
			return err
		}
	}

	return nil
}

func callListProducts(client *http.Client, cfg config, col *collector) (string, error) {
	return doCall(client, col, "ListProducts", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, cfg.baseURL+"/api/products", nil)
	}, nil)
}

func callGetProduct(client *http.Client, cfg config, col *collector) (string, error) {
	return doCall(client, col, "GetProduct", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, cfg.baseURL+"/api/products/"+cfg.productID, nil)
	}, nil)
}

func callAddToCart(client *http.Client, cfg config, userID string, col *collector) (string, error) {
	body := map[string]any{
		"product_id": cfg.productID,
		"quantity":   cfg.qty,
	}
	return doCall(client, col, "AddToCart", func() (*http.Request, error) {
		req, err := newJSONRequest(http.MethodPost, cfg.baseURL+"/api/cart/add", body)
		if err != nil {
			return nil, err
		}
		req.Header.Set(userHeader, userID)
		return req, nil
	}, nil)
}

func callCreateOrder(client *http.Client, cfg config, userID, key string, col *collector) (string, string, error) {
	body := map[string]any{
		"payment_method": cfg.paymentMethod,
	}
	if cfg.paymentMethod == "card" {
		body["payment_details"] = map[string]any{"card_number": "4242424242424242"}
	}

	var response struct {
		OrderID string `json:"orderId"`
	}
	code, err := doCall(client, col, "CreateOrder", func() (*http.Request, error) {
		req, err := newJSONRequest(http.MethodPost, cfg.baseURL+"/api/orders/create", body)
		if err != nil {
			return nil, err
		}
		req.Header.Set(userHeader, userID)
		req.Header.Set(idempotencyHeader, key)
		return req, nil
	}, &response)
	return response.OrderID, code, err
}

func callReorder(client *http.Client, cfg config, userID, orderID string, col *collector) (string, error) {
	return doCall(client, col, "Reorder", func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, cfg.baseURL+"/api/orders/"+orderID+"/reorder", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(userHeader, userID)
		return req, nil
	}, nil)
}

// doCall выполняет один HTTP-вызов и записывает метод в collector.
// out заполняется из успешного JSON-ответа, если не nil.
func doCall(client *http.Client, col *collector, method string, build func() (*http.Request, error), out any) (string, error) {
	start := time.Now()

	req, err := build()
	if err != nil {
		col.record(method, time.Since(start), codeTransportError, false)
		return codeTransportError, err
	}

	resp, err := client.Do(req)
	if err != nil {
		col.record(method, time.Since(start), codeTransportError, false)
		return codeTransportError, err
	}
	defer resp.Body.Close()

	code := strconv.Itoa(resp.StatusCode)
	success := resp.StatusCode < 400
	payload, readErr := io.ReadAll(resp.Body)

	col.record(method, time.Since(start), code, success)

	if !success {
		return code, fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if readErr != nil {
		return code, fmt.Errorf("%s read body: %w", method, readErr)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return code, fmt.Errorf("%s decode body: %w", method, err)
		}
	}
	return code, nil
}

func newJSONRequest(method, url string, body any) (*http.Request, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func shouldReorderScenario(index, reorderRate int) bool {
	if reorderRate <= 0 {
		return false
	}
	if reorderRate >= 100 {
		return true
	}
	return index%100 < reorderRate
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
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

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
