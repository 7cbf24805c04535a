package weather

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// CurrentFetcher is satisfied by *Client.
type CurrentFetcher interface {
	Current(ctx context.Context, city string) (Current, error)
}

// CurrentCache keeps the configured city's current weather warm.
type CurrentCache struct {
	fetcher  CurrentFetcher
	city     string
	interval time.Duration
	log      *zap.Logger

	scheduler *gocron.Scheduler

	mu        sync.RWMutex
	value     Current
	fetchedAt time.Time
}

func NewCurrentCache(f CurrentFetcher, city string, interval time.Duration, log *zap.Logger) *CurrentCache {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CurrentCache{
		fetcher:   f,
		city:      city,
		interval:  interval,
		log:       log.Named("weather-cache"),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start refreshes immediately and then every interval.
func (c *CurrentCache) Start() error {
	_, err := c.scheduler.Every(c.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.refresh(ctx); err != nil {
			c.log.Warn("refresh failed", zap.String("city", c.city), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	c.scheduler.StartAsync()
	return nil
}

func (c *CurrentCache) Stop() {
	c.scheduler.Stop()
}

func (c *CurrentCache) refresh(ctx context.Context) (Current, error) {
	cur, err := c.fetcher.Current(ctx, c.city)
	if err != nil {
		return Current{}, err
	}
	c.mu.Lock()
	c.value, c.fetchedAt = cur, time.Now()
	c.mu.Unlock()
	return cur, nil
}

// Get returns the cached value, fetching live when nothing is cached yet
// or the last refresh is older than two intervals.
func (c *CurrentCache) Get(ctx context.Context) (Current, error) {
	c.mu.RLock()
	cur, at := c.value, c.fetchedAt
	c.mu.RUnlock()

	if !at.IsZero() && time.Since(at) < 2*c.interval {
		return cur, nil
	}
	return c.refresh(ctx)
}
