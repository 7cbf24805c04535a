// Package weather talks to the OpenWeather 2.5 API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"farmtech/pkg/irrigation"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ForecastEntry is one 3-hourly element of /forecast.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain map[string]float64 `json:"rain,omitempty"`
	Pop  float64            `json:"pop"`
}

// RainMm reads rain["3h"], which OpenWeather omits on dry slots.
func (e ForecastEntry) RainMm() float64 { return e.Rain["3h"] }

// ForecastPayload is the subset of /forecast the service reads.
type ForecastPayload struct {
	List []ForecastEntry `json:"list"`
}

// Current is the trimmed /weather answer served to the chatbot.
type Current struct {
	Temp        float64 `json:"temp"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	Rain        float64 `json:"rain"`
}

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Backoff    BackoffConfig
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Backoff.InitialInterval == 0 {
		opts.Backoff = BackoffConfig{MaxRetries: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: 5 * time.Second}
	}
	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		backoff: opts.Backoff,
		circuit: newBreaker("openweather"),
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingKey
	}
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u := c.baseURL + path + "?" + q.Encode()

	resp, err := doWithRetry(ctx, c.http, c.backoff, c.circuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return fmt.Errorf("openweather %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("openweather %s: decode: %w", path, err)
	}
	return nil
}

// Forecast returns the raw 3-hourly list for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]ForecastEntry, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var p ForecastPayload
	if err := c.get(ctx, "/forecast", q, &p); err != nil {
		return nil, err
	}
	return p.List, nil
}

// Current returns the present conditions for a city name.
func (c *Client) Current(ctx context.Context, city string) (Current, error) {
	q := url.Values{}
	q.Set("q", city)

	var p struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Rain map[string]float64 `json:"rain"`
	}
	if err := c.get(ctx, "/weather", q, &p); err != nil {
		return Current{}, err
	}

	cur := Current{Temp: p.Main.Temp, Humidity: p.Main.Humidity, Rain: p.Rain["1h"]}
	if len(p.Weather) > 0 {
		cur.Description = p.Weather[0].Description
	}
	return cur, nil
}

// Daily keeps one entry per 24h out of the 3-hourly list.
func Daily(list []ForecastEntry) []ForecastEntry {
	out := make([]ForecastEntry, 0, (len(list)+7)/8)
	for i := 0; i < len(list); i += 8 {
		out = append(out, list[i])
	}
	return out
}

// ToDays converts sampled entries into simulation input.
func ToDays(list []ForecastEntry) []irrigation.DayWeather {
	out := make([]irrigation.DayWeather, len(list))
	for i, e := range list {
		out[i] = irrigation.DayWeather{
			Time:   time.Unix(e.Dt, 0).UTC(),
			TempC:  e.Main.Temp,
			RainMm: e.RainMm(),
			Pop:    e.Pop,
		}
	}
	return out
}
