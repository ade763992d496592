package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrbench/ocrbench/internal/metrics"
)

func newTestClient(url string, options ...Option) *Client {
	base := []Option{
		WithBaseURL(url),
		WithToken("test_token"),
		WithTimeout(2 * time.Second),
	}
	return NewClient(append(base, options...)...)
}

func TestSendFlatResultSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"errorCode":0,"errorMsg":"","result":{"ocrResults":[{"prunedResult":"héllo "},{"prunedResult":"wörld"}]}}`))
	}))
	defer server.Close()

	result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))

	require.True(t, result.Success())
	assert.Equal(t, metrics.CategoryNone, result.Category)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "héllo wörld", result.Text)
	// Characters are counted as runes, not bytes.
	assert.Equal(t, 11, result.CharCount)
	assert.Zero(t, result.PageCount)

	assert.Equal(t, "token test_token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestSendPaginatedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errorCode":0,"result":{"pages":[` +
			`{"ocrResults":[{"prunedResult":"page one "}]},` +
			`{"ocrResults":[{"prunedResult":"page two"}]}` +
			`],"renderedPages":2}}`))
	}))
	defer server.Close()

	result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))

	require.True(t, result.Success())
	assert.Equal(t, "page one page two", result.Text)
	assert.Equal(t, 2, result.PageCount)
}

func TestSendEmptyPagesIsPaginated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errorCode":0,"result":{"pages":[],"renderedPages":0}}`))
	}))
	defer server.Close()

	result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))
	require.True(t, result.Success())
	assert.Zero(t, result.CharCount)
	assert.Zero(t, result.PageCount)
}

func TestSendApplicationError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"non-zero errorCode", `{"errorCode":101,"errorMsg":"model not loaded"}`, "model not loaded"},
		{"missing errorCode", `{"errorMsg":"boom"}`, "boom"},
		{"missing everything", `{}`, "Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))
			assert.Equal(t, metrics.StatusError, result.Status)
			assert.Equal(t, metrics.CategoryValidation, result.Category)
			assert.Equal(t, tt.wantMsg, result.ErrorMsg)
		})
	}
}

func TestSendHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   metrics.Category
	}{
		{http.StatusBadRequest, metrics.CategoryHTTP4xx},
		{http.StatusUnauthorized, metrics.CategoryHTTP4xx},
		{http.StatusInternalServerError, metrics.CategoryHTTP5xx},
		{http.StatusServiceUnavailable, metrics.CategoryHTTP5xx},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{}`))
		}))

		result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))
		assert.Equal(t, metrics.StatusError, result.Status)
		assert.Equal(t, tt.want, result.Category, "status %d", tt.status)
		assert.Equal(t, tt.status, result.StatusCode)
		server.Close()
	}
}

func TestSendDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	}))
	defer server.Close()

	result := newTestClient(server.URL).Send(context.Background(), []byte(`{}`))
	assert.Equal(t, metrics.StatusError, result.Status)
	assert.Equal(t, metrics.CategoryDecode, result.Category)
}

func TestSendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"errorCode":0,"result":{}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, WithTimeout(50*time.Millisecond))
	result := client.Send(context.Background(), []byte(`{}`))

	assert.Equal(t, metrics.StatusTimeout, result.Status)
	assert.Equal(t, metrics.CategoryTimeout, result.Category)
}

func TestSendCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	result := newTestClient(server.URL).Send(ctx, []byte(`{}`))

	assert.Equal(t, metrics.StatusCancelled, result.Status)
	assert.Equal(t, metrics.CategoryTimeout, result.Category)
}

func TestSendConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestClient(url).Send(context.Background(), []byte(`{}`))
	assert.Equal(t, metrics.StatusError, result.Status)
	assert.Equal(t, metrics.CategoryConnection, result.Category)
}

func TestHealthCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// The health URL is derived from the OCR endpoint URL.
	client := newTestClient(server.URL + "/ocr")
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/ocr")
	assert.Error(t, client.HealthCheck(context.Background()))
}

func TestWarmup(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1)%2 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{"errorCode":0,"result":{"ocrResults":[{"prunedResult":"x"}]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ok, total := client.Warmup(context.Background(), []byte(`{}`), 4, 1, nil)
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, ok)

	calls.Store(0)
	seen := 0
	ok, total = client.Warmup(context.Background(), []byte(`{}`), 6, 3, func(i int, r *Result) { seen++ })
	assert.Equal(t, 6, total)
	assert.Equal(t, 3, ok)
	assert.Equal(t, 6, seen)

	ok, total = client.Warmup(context.Background(), []byte(`{}`), 0, 1, nil)
	assert.Zero(t, ok)
	assert.Zero(t, total)
}
