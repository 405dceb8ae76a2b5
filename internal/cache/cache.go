// Package cache provides a bounded in-memory store for computed forecasts
// keyed by assumptions fingerprint.
package cache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/iwvelando/arr-forecast/internal/forecast"
)

// Cache is a thread-safe forecast store with FIFO eviction. Forecasts are
// pure functions of their assumptions, so entries never expire; they only
// age out when capacity is reached.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]forecast.Forecast
	order    []string
	logger   *zap.Logger
}

// New creates a Cache bounded to capacity entries. A non-positive capacity
// disables storage entirely; Get will always miss.
func New(logger *zap.Logger, capacity int) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]forecast.Forecast),
		logger:   logger,
	}
}

// Get returns the cached forecast for the fingerprint, if present.
func (c *Cache) Get(fingerprint string) (forecast.Forecast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.entries[fingerprint]
	if ok {
		c.logger.Debug("forecast cache hit",
			zap.String("op", "cache.Get"),
			zap.String("fingerprint", fingerprint),
		)
	}
	return result, ok
}

// Put stores a computed forecast, evicting the oldest entry once the cache
// is full. Storing an existing fingerprint refreshes the entry without
// changing its eviction position.
func (c *Cache) Put(fingerprint string, result forecast.Forecast) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; exists {
		c.entries[fingerprint] = result
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.Debug("forecast cache evicted oldest entry",
			zap.String("op", "cache.Put"),
			zap.String("fingerprint", oldest),
		)
	}

	c.entries[fingerprint] = result
	c.order = append(c.order, fingerprint)
}

// Len returns the number of cached forecasts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
