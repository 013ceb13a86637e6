package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type LoadTestConfig struct {
	BaseURL             string
	ConcurrentUsers     int
	TestDurationSeconds int
	ProductIDs          []string
}

type TestResult struct {
	TotalRequests       int64
	SuccessfulRequests  int64
	FailedRequests      int64
	TotalCheckouts      int64
	SuccessfulCheckouts int64
	ConflictRejections  int64
	OversellRejections  int64
	ResponseTimes       []time.Duration
	Errors              map[string]int64
	mutex               sync.RWMutex
}

type PerformanceMetrics struct {
	TotalDuration       time.Duration
	ThroughputRPS       float64
	P50ResponseTime     time.Duration
	P95ResponseTime     time.Duration
	P99ResponseTime     time.Duration
	ErrorRate           float64
	CheckoutSuccessRate float64
}

type LoadTester struct {
	config *LoadTestConfig
	result *TestResult
	client *http.Client
}

type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type cartResponse struct {
	ID string `json:"id"`
}

func NewLoadTester(config *LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		result: &TestResult{
			ResponseTimes: make([]time.Duration, 0, 100000),
			Errors:        make(map[string]int64),
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (lt *LoadTester) recordRequest(duration time.Duration, err error) {
	atomic.AddInt64(&lt.result.TotalRequests, 1)
	lt.result.mutex.Lock()
	defer lt.result.mutex.Unlock()
	lt.result.ResponseTimes = append(lt.result.ResponseTimes, duration)
	if err != nil {
		atomic.AddInt64(&lt.result.FailedRequests, 1)
		lt.result.Errors[err.Error()]++
		return
	}
	atomic.AddInt64(&lt.result.SuccessfulRequests, 1)
}

func (lt *LoadTester) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.config.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := lt.client.Do(req)
	lt.recordRequest(time.Since(start), err)
	return resp, err
}

func (lt *LoadTester) createCart(ctx context.Context, userID int) (string, error) {
	resp, err := lt.post(ctx, "/carts", map[string]interface{}{"user_id": userID})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create cart status %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	var cart cartResponse
	if err := json.Unmarshal(envelope.Data, &cart); err != nil {
		return "", err
	}
	return cart.ID, nil
}

func (lt *LoadTester) addProduct(ctx context.Context, cartID, productID string) error {
	resp, err := lt.post(ctx, fmt.Sprintf("/carts/%s/products/%s", cartID, productID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("add product status %d", resp.StatusCode)
	}
	return nil
}

func (lt *LoadTester) checkout(ctx context.Context, cartID string) {
	atomic.AddInt64(&lt.result.TotalCheckouts, 1)
	resp, err := lt.post(ctx, fmt.Sprintf("/carts/%s/checkout", cartID), nil)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		atomic.AddInt64(&lt.result.SuccessfulCheckouts, 1)
		// Complete roughly half the sessions, abandon the rest so the
		// sweeper path gets exercised too.
		if rand.Intn(2) == 0 {
			lt.get(ctx, fmt.Sprintf("/carts/%s/checkout/success", cartID))
		}
	case http.StatusConflict:
		atomic.AddInt64(&lt.result.ConflictRejections, 1)
	case http.StatusBadRequest:
		atomic.AddInt64(&lt.result.OversellRejections, 1)
	}
}

func (lt *LoadTester) get(ctx context.Context, path string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lt.config.BaseURL+path, nil)
	if err != nil {
		return
	}
	start := time.Now()
	resp, err := lt.client.Do(req)
	lt.recordRequest(time.Since(start), err)
	if resp != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func (lt *LoadTester) simulateUser(ctx context.Context, userID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cartID, err := lt.createCart(ctx, userID)
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		productID := lt.config.ProductIDs[rand.Intn(len(lt.config.ProductIDs))]
		if err := lt.addProduct(ctx, cartID, productID); err != nil {
			continue
		}

		lt.checkout(ctx, cartID)
		time.Sleep(time.Duration(rand.Intn(200)) * time.Millisecond)
	}
}

func (lt *LoadTester) Run(ctx context.Context) PerformanceMetrics {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(lt.config.TestDurationSeconds)*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < lt.config.ConcurrentUsers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			lt.simulateUser(ctx, userID)
		}(i + 1)
	}
	wg.Wait()

	return lt.metrics(time.Since(start))
}

func (lt *LoadTester) metrics(elapsed time.Duration) PerformanceMetrics {
	lt.result.mutex.RLock()
	defer lt.result.mutex.RUnlock()

	times := make([]time.Duration, len(lt.result.ResponseTimes))
	copy(times, lt.result.ResponseTimes)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	percentile := func(p float64) time.Duration {
		if len(times) == 0 {
			return 0
		}
		idx := int(float64(len(times)) * p)
		if idx >= len(times) {
			idx = len(times) - 1
		}
		return times[idx]
	}

	total := atomic.LoadInt64(&lt.result.TotalRequests)
	failed := atomic.LoadInt64(&lt.result.FailedRequests)
	checkouts := atomic.LoadInt64(&lt.result.TotalCheckouts)
	succeeded := atomic.LoadInt64(&lt.result.SuccessfulCheckouts)

	m := PerformanceMetrics{
		TotalDuration:   elapsed,
		P50ResponseTime: percentile(0.50),
		P95ResponseTime: percentile(0.95),
		P99ResponseTime: percentile(0.99),
	}
	if elapsed > 0 {
		m.ThroughputRPS = float64(total) / elapsed.Seconds()
	}
	if total > 0 {
		m.ErrorRate = float64(failed) / float64(total) * 100
	}
	if checkouts > 0 {
		m.CheckoutSuccessRate = float64(succeeded) / float64(checkouts) * 100
	}
	return m
}

func (lt *LoadTester) printReport(m PerformanceMetrics) {
	fmt.Println("=== Checkout Load Test Report ===")
	fmt.Printf("Duration:              %v\n", m.TotalDuration.Round(time.Millisecond))
	fmt.Printf("Total requests:        %d\n", atomic.LoadInt64(&lt.result.TotalRequests))
	fmt.Printf("Throughput:            %.1f req/s\n", m.ThroughputRPS)
	fmt.Printf("Error rate:            %.2f%%\n", m.ErrorRate)
	fmt.Printf("P50/P95/P99:           %v / %v / %v\n", m.P50ResponseTime, m.P95ResponseTime, m.P99ResponseTime)
	fmt.Printf("Checkouts attempted:   %d\n", atomic.LoadInt64(&lt.result.TotalCheckouts))
	fmt.Printf("Checkout success rate: %.2f%%\n", m.CheckoutSuccessRate)
	fmt.Printf("Version conflicts:     %d\n", atomic.LoadInt64(&lt.result.ConflictRejections))
	fmt.Printf("Oversell rejections:   %d\n", atomic.LoadInt64(&lt.result.OversellRejections))

	lt.result.mutex.RLock()
	defer lt.result.mutex.RUnlock()
	if len(lt.result.Errors) > 0 {
		fmt.Println("Errors:")
		for msg, count := range lt.result.Errors {
			fmt.Printf("  %6d  %s\n", count, msg)
		}
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the marketplace service")
	users := flag.Int("users", 50, "Concurrent simulated shoppers")
	duration := flag.Int("duration", 60, "Test duration in seconds")
	flag.Parse()

	products := flag.Args()
	if len(products) == 0 {
		fmt.Println("usage: test_checkout_load [flags] <product-id> [product-id ...]")
		os.Exit(1)
	}

	config := &LoadTestConfig{
		BaseURL:             *baseURL,
		ConcurrentUsers:     *users,
		TestDurationSeconds: *duration,
		ProductIDs:          products,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running checkout load test: %d users, %ds, %d products\n", *users, *duration, len(products))
	tester := NewLoadTester(config)
	metrics := tester.Run(ctx)
	tester.printReport(metrics)
}
