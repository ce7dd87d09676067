package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Execute_RetryOn5xx(t *testing.T) {
	var attemptCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attemptCount.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second, WithBackoff(time.Millisecond))

	resp, err := client.Execute(context.Background(), RequestOptions{
		Method: http.MethodGet,
		URL:    server.URL + "/test",
		Retry:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), attemptCount.Load(), "Should have retried 2 times (3 total attempts)")
}

func TestClient_Execute_RetryOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close() // connections are now refused

	client := NewClient(nil, false, time.Second, WithBackoff(time.Millisecond))

	_, err := client.Execute(context.Background(), RequestOptions{
		Method: http.MethodGet,
		URL:    url + "/invalid",
		Retry:  2,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_Execute_NoRetryOn4xx(t *testing.T) {
	var attemptCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second)

	resp, err := client.Execute(context.Background(), RequestOptions{
		Method: http.MethodGet,
		URL:    server.URL + "/test",
		Retry:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attemptCount.Load(), "Should not retry on 4xx errors")
}

func TestClient_Execute_RetryExponentialBackoff(t *testing.T) {
	var attemptCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"server error"}`))
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second)

	start := time.Now()
	resp, err := client.Execute(context.Background(), RequestOptions{
		Method: http.MethodGet,
		URL:    server.URL + "/test",
		Retry:  2, // Will try 3 times total
	})
	duration := time.Since(start)

	require.NoError(t, err, "5xx responses should not cause errors, just retries")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), attemptCount.Load())
	assert.GreaterOrEqual(t, duration, 300*time.Millisecond, "Should have waited 100ms then 200ms")
}

func TestClient_Execute_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second, WithBackoff(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, RequestOptions{
		Method: http.MethodGet,
		URL:    server.URL,
		Retry:  1,
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Execute_ResponseSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second)

	_, err := client.Execute(context.Background(), RequestOptions{
		Method:          http.MethodGet,
		URL:             server.URL + "/test",
		Retry:           3,
		MaxResponseSize: 1024,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Contains(t, err.Error(), "exceeds maximum size")
}

func TestClient_Execute_ResponseSizeWithinLimit(t *testing.T) {
	body := make([]byte, 1024)
	for i := range body {
		body[i] = byte(i % 256)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer server.Close()

	client := NewClient(nil, false, 30*time.Second)

	resp, err := client.Execute(context.Background(), RequestOptions{
		Method:          http.MethodGet,
		URL:             server.URL + "/test",
		MaxResponseSize: 1024,
	})

	require.NoError(t, err)
	assert.Equal(t, body, resp.Body)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "Timeout error", err: fmt.Errorf("context deadline exceeded"), expected: true},
		{name: "Connection refused", err: fmt.Errorf("connection refused"), expected: true},
		{name: "Connection reset", err: fmt.Errorf("read: connection reset by peer"), expected: true},
		{name: "Network unreachable", err: fmt.Errorf("network is unreachable"), expected: true},
		{name: "Unexpected EOF", err: fmt.Errorf("unexpected EOF"), expected: true},
		{name: "Non-retryable error", err: fmt.Errorf("invalid argument"), expected: false},
		{name: "Wrapped host encoding", err: fmt.Errorf("wrap: %w", errors.New("host encoding error")), expected: false},
		{name: "Nil error", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryableError(tt.err))
		})
	}
}
