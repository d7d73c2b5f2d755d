package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTimer fires immediately and remembers every requested delay.
type recordingTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delays = append(t.delays, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

func (t *recordingTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

type failingTransport struct {
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func TestClient_RetriesUntilBudgetExhausted(t *testing.T) {
	transport := &failingTransport{}
	timer := &recordingTimer{}
	client := New(&http.Client{Transport: transport}, WithTimer(timer))

	resp, err := client.Get(context.Background(), "http://weather.invalid/api/weather")
	require.Error(t, err)
	assert.Nil(t, resp)

	assert.Equal(t, int32(DefaultMaxRetries+1), transport.calls.Load())
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, timer.Delays())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.False(t, transportErr.Timeout)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_NonSuccessStatusIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.Client(), WithTimer(&recordingTimer{}))
	_, err := client.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, "HTTP 500: Internal Server Error", err.Error())
	assert.Equal(t, int32(3), hits.Load())

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestClient_RecoversAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	timer := &recordingTimer{}
	client := New(srv.Client(), WithTimer(timer))
	resp, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, []time.Duration{1 * time.Second}, timer.Delays())
}

func TestClient_TimeoutIsPerAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.Client(), WithTimeout(100*time.Millisecond), WithTimer(&recordingTimer{}))
	resp, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "{}", string(resp.Body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_TimeoutReportedAfterExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := New(srv.Client(), WithTimeout(50*time.Millisecond), WithMaxRetries(1), WithTimer(&recordingTimer{}))
	_, err := client.Get(context.Background(), srv.URL)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout)
	assert.Equal(t, "request timed out after 50ms", err.Error())
}

func TestClient_ZeroRetriesMakesSingleAttempt(t *testing.T) {
	transport := &failingTransport{}
	timer := &recordingTimer{}
	client := New(&http.Client{Transport: transport}, WithMaxRetries(0), WithTimer(timer))

	_, err := client.Get(context.Background(), "http://weather.invalid")
	require.Error(t, err)
	assert.Equal(t, int32(1), transport.calls.Load())
	assert.Empty(t, timer.Delays())
}

func TestClient_StopsWhenContextCancelled(t *testing.T) {
	transport := &failingTransport{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(&http.Client{Transport: transport}, WithTimer(&recordingTimer{}))
	_, err := client.Get(ctx, "http://weather.invalid")

	require.Error(t, err)
	assert.LessOrEqual(t, transport.calls.Load(), int32(1))
}

func TestClient_SendsUserAgent(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.Client(), WithUserAgent("DanishWeatherApp/1.0"))
	_, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "DanishWeatherApp/1.0", <-got)
}

func TestLinearBackOff(t *testing.T) {
	b := &LinearBackOff{Step: time.Second}
	assert.Equal(t, 1*time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 3*time.Second, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 1*time.Second, b.NextBackOff())
}
