package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastJSON = `{"list":[
 {"dt":1767355200,"main":{"temp":29.6},"pop":0.35,"rain":{"3h":1.25}},
 {"dt":1767366000,"main":{"temp":27.0},"pop":0.1},
 {"dt":1767376800,"main":{"temp":26.0},"pop":0}
]}`

func fastBackoff() BackoffConfig {
	return BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, APIKey: "k", HTTPClient: srv.Client(), Backoff: fastBackoff()})
}

func TestForecast_ParsesListAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "18.52", r.URL.Query().Get("lat"))
		assert.Equal(t, "73.85", r.URL.Query().Get("lon"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		w.Write([]byte(forecastJSON))
	})

	list, err := c.Forecast(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1.25, list[0].RainMm())
	assert.Equal(t, 0.0, list[1].RainMm())
	assert.Equal(t, 0.35, list[0].Pop)
}

func TestCurrent_TrimsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Pune", r.URL.Query().Get("q"))
		w.Write([]byte(`{"main":{"temp":31.2,"humidity":40},"weather":[{"description":"haze"}],"rain":{"1h":0.4}}`))
	})

	cur, err := c.Current(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, Current{Temp: 31.2, Humidity: 40, Description: "haze", Rain: 0.4}, cur)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(forecastJSON))
	})

	_, err := c.Forecast(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_RateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Forecast(context.Background(), 1, 2)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Current(context.Background(), "Pune")
	assert.True(t, errors.Is(err, ErrStatus))
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_MissingKeySkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Forecast(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Zero(t, calls.Load())
}

func TestDaily_SamplesEveryEighth(t *testing.T) {
	list := make([]ForecastEntry, 40)
	for i := range list {
		list[i].Dt = int64(i)
	}
	got := Daily(list)
	require.Len(t, got, 5)
	for i, e := range got {
		assert.Equal(t, int64(i*8), e.Dt)
	}
	assert.Len(t, Daily(list[:9]), 2)
	assert.Empty(t, Daily(nil))
}

func TestToDays(t *testing.T) {
	e := ForecastEntry{Dt: 1767355200, Pop: 0.5, Rain: map[string]float64{"3h": 2}}
	e.Main.Temp = 21.4
	d := ToDays([]ForecastEntry{e})[0]
	assert.Equal(t, time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC), d.Time)
	assert.Equal(t, 21.4, d.TempC)
	assert.Equal(t, 2.0, d.RainMm)
	assert.Equal(t, 0.5, d.Pop)
}

type stubFetcher struct {
	calls atomic.Int32
	err   error
}

func (s *stubFetcher) Current(ctx context.Context, city string) (Current, error) {
	s.calls.Add(1)
	if s.err != nil {
		return Current{}, s.err
	}
	return Current{Temp: 25, Description: city}, nil
}

func TestCurrentCache_GetFetchesOnceThenServesCache(t *testing.T) {
	f := &stubFetcher{}
	c := NewCurrentCache(f, "Pune", time.Hour, nil)

	cur, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pune", cur.Description)

	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestCurrentCache_PropagatesError(t *testing.T) {
	c := NewCurrentCache(&stubFetcher{err: errors.New("down")}, "Pune", time.Hour, nil)
	_, err := c.Get(context.Background())
	assert.EqualError(t, err, "down")
}

func TestCurrentCache_StartRefreshesInBackground(t *testing.T) {
	f := &stubFetcher{}
	c := NewCurrentCache(f, "Pune", time.Hour, nil)
	require.NoError(t, c.Start())
	defer c.Stop()

	assert.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	_, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.calls.Load())
}
