package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      5 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 5,
	}
}

func TestFactorySourceFor(t *testing.T) {
	f := NewFactory(testHTTPConfig(), nil)
	defer f.Close()

	tests := []struct {
		location string
		wantName string
		wantErr  bool
	}{
		{location: "data/matches.csv", wantName: "file"},
		{location: "file:///tmp/matches.csv", wantName: "file"},
		{location: "https://example.com/matches.csv", wantName: "http"},
		{location: "http://example.com/deliveries.csv", wantName: "http"},
		{location: "ftp://example.com/matches.csv", wantErr: true},
		{location: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src, err := f.SourceFor(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestHTTPSourceOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, matchesCSV)
	}))
	defer server.Close()

	src := NewHTTPSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), nil)

	rc, err := src.Open(context.Background(), server.URL+"/matches.csv")
	require.NoError(t, err)
	defer rc.Close()

	matches, err := ReadMatches(rc)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	_, err = src.Open(context.Background(), server.URL+"/other.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, deliveriesCSV)
	}))
	defer server.Close()

	src := NewHTTPSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), nil)

	rc, err := src.Open(context.Background(), server.URL+"/deliveries.csv")
	require.NoError(t, err)
	defer rc.Close()

	deliveries, err := ReadDeliveries(rc)
	require.NoError(t, err)
	assert.Len(t, deliveries, 4)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), server.URL)
		require.Error(t, err)
	}

	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
