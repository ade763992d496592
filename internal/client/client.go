// Package client issues single OCR requests against the tested service and
// classifies every possible failure into a structured result. Nothing
// propagates past the client boundary: every path, including transport
// errors and malformed responses, yields a Result.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ocrbench/ocrbench/internal/metrics"
)

const healthCheckTimeout = 5 * time.Second

// Result is the structured outcome of one request attempt.
type Result struct {
	Status     metrics.Status
	Category   metrics.Category
	StatusCode int
	Latency    time.Duration
	ErrorMsg   string

	// OCR yield, populated on success only.
	Text      string
	CharCount int
	PageCount int
}

// Success reports whether the request completed with a usable OCR result.
func (r *Result) Success() bool {
	return r.Status == metrics.StatusSuccess
}

// Client performs OCR requests with a hard per-request timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL        string
	token          string
	timeout        time.Duration
	maxConnections int
	verifyTLS      bool
}

// WithBaseURL sets the OCR endpoint URL.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

// WithToken sets the authorization token.
func WithToken(token string) Option {
	return func(c *clientConfig) { c.token = token }
}

// WithTimeout sets the hard per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) { c.timeout = timeout }
}

// WithMaxConnections bounds the connection pool. Sized to the scenario's
// peak concurrency by callers.
func WithMaxConnections(n int) Option {
	return func(c *clientConfig) { c.maxConnections = n }
}

// WithTLSVerification enables certificate verification. Disabled by default
// since benchmark targets commonly run with self-signed certificates.
func WithTLSVerification(verify bool) Option {
	return func(c *clientConfig) { c.verifyTLS = verify }
}

// NewClient creates a client with the given options.
func NewClient(options ...Option) *Client {
	cfg := clientConfig{
		timeout:        60 * time.Second,
		maxConnections: 100,
	}
	for _, option := range options {
		option(&cfg)
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.maxConnections,
		MaxIdleConnsPerHost: cfg.maxConnections,
		MaxConnsPerHost:     cfg.maxConnections,
		IdleConnTimeout:     30 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: !cfg.verifyTLS},
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.timeout,
		},
		baseURL: cfg.baseURL,
		token:   cfg.token,
	}
}

// Send issues exactly one OCR request with the pre-encoded body and returns
// a structured result. The latency covers the full round trip including
// body parsing, matching what callers record as the request latency.
func (c *Client) Send(ctx context.Context, body []byte) *Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return &Result{
			Status:   metrics.StatusError,
			Category: metrics.CategoryUnknown,
			ErrorMsg: fmt.Sprintf("build request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err, time.Since(start))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	if err != nil {
		return classifyTransportError(err, latency)
	}

	return c.parseResponse(resp.StatusCode, raw, latency)
}

// parseResponse classifies the HTTP status and response body into a Result.
func (c *Client) parseResponse(statusCode int, raw []byte, latency time.Duration) *Result {
	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return &Result{
			Status:     metrics.StatusError,
			Category:   metrics.CategoryDecode,
			StatusCode: statusCode,
			Latency:    latency,
			ErrorMsg:   fmt.Sprintf("JSON decode error: %v", err),
		}
	}

	if statusCode != http.StatusOK {
		category := metrics.CategoryHTTP5xx
		if statusCode >= 400 && statusCode < 500 {
			category = metrics.CategoryHTTP4xx
		}
		return &Result{
			Status:     metrics.StatusError,
			Category:   category,
			StatusCode: statusCode,
			Latency:    latency,
			ErrorMsg:   fmt.Sprintf("HTTP %d", statusCode),
		}
	}

	// A missing errorCode is treated as an application failure, same as a
	// non-zero one.
	if decoded.ErrorCode == nil || *decoded.ErrorCode != 0 {
		msg := decoded.ErrorMsg
		if msg == "" {
			msg = "Unknown error"
		}
		return &Result{
			Status:     metrics.StatusError,
			Category:   metrics.CategoryValidation,
			StatusCode: statusCode,
			Latency:    latency,
			ErrorMsg:   msg,
		}
	}

	parsed, err := resolveResult(decoded.Result)
	if err != nil {
		return &Result{
			Status:     metrics.StatusError,
			Category:   metrics.CategoryDecode,
			StatusCode: statusCode,
			Latency:    latency,
			ErrorMsg:   fmt.Sprintf("result decode error: %v", err),
		}
	}

	return &Result{
		Status:     metrics.StatusSuccess,
		Category:   metrics.CategoryNone,
		StatusCode: statusCode,
		Latency:    latency,
		Text:       parsed.Text,
		CharCount:  parsed.CharCount,
		PageCount:  parsed.PageCount,
	}
}

// classifyTransportError maps request-level errors onto the failure
// taxonomy. Timeouts and cancellations are distinguished from connection
// failures; anything unrecognized is CategoryUnknown.
func classifyTransportError(err error, latency time.Duration) *Result {
	switch {
	case errors.Is(err, context.Canceled):
		return &Result{
			Status:   metrics.StatusCancelled,
			Category: metrics.CategoryTimeout,
			Latency:  latency,
			ErrorMsg: "Request cancelled",
		}
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &Result{
			Status:   metrics.StatusTimeout,
			Category: metrics.CategoryTimeout,
			Latency:  latency,
			ErrorMsg: "Request timeout",
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Result{
			Status:   metrics.StatusError,
			Category: metrics.CategoryConnection,
			Latency:  latency,
			ErrorMsg: fmt.Sprintf("Connection error: %v", urlErr.Err),
		}
	}

	return &Result{
		Status:   metrics.StatusError,
		Category: metrics.CategoryUnknown,
		Latency:  latency,
		ErrorMsg: fmt.Sprintf("Unexpected error: %v", err),
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// HealthCheck probes the service's /health endpoint, derived from the base
// URL. It is best effort: a nil error means the service answered 200.
func (c *Client) HealthCheck(ctx context.Context) error {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("derive health URL: %w", err)
	}
	healthURL := (&url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/health"}).String()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Warmup sends count requests with the given body, serially when
// concurrency <= 1, otherwise bounded by a semaphore. onResult, when
// non-nil, is called for each completed warmup request in index order for
// serial warmup and in completion order otherwise. Returns the number of
// successes and the total sent.
func (c *Client) Warmup(ctx context.Context, body []byte, count, concurrency int, onResult func(int, *Result)) (int, int) {
	if count <= 0 {
		return 0, 0
	}

	if concurrency <= 1 {
		successCount := 0
		for i := 0; i < count; i++ {
			result := c.Send(ctx, body)
			if result.Success() {
				successCount++
			}
			if onResult != nil {
				onResult(i, result)
			}
		}
		return successCount, count
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	sem := make(chan struct{}, concurrency)
	for i := 0; i < count; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			result := c.Send(ctx, body)
			mu.Lock()
			if result.Success() {
				successes++
			}
			if onResult != nil {
				onResult(i, result)
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return successes, count
}
