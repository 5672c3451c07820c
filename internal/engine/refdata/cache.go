// internal/engine/refdata/cache.go
package refdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/common/metrics"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 1000
)

// Derived income limits as fixed percentages of AMI.
const (
	limitPct50 = 0.50
	limitPct60 = 0.60
	limitPct80 = 0.80
)

type cacheEntry struct {
	data     models.ReferenceDataEntry
	storedAt time.Time
}

// Cache caches ReferenceDataEntry values per (state, county, household
// size). TTL expiry is checked on read; once full, the insertion-order
// oldest entry is displaced (FIFO, not LRU — recency of access is not
// tracked). Safe for concurrent use; identical in-flight loads are
// coalesced.
//
// The cache is an explicitly constructed, injected dependency — tests
// and callers own their own instances.
type Cache struct {
	loader     Loader
	ttl        time.Duration
	maxEntries int
	logger     logger.Logger
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string

	group singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) { c.maxEntries = n }
}

// WithClock substitutes the time source, for expiry tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(loader Loader, log logger.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:     loader,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		logger:     log,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the AMI entry for the state/county/household size,
// loading and caching it on miss. It never returns partial or stale
// data: expired entries are evicted and reloaded, and unknown
// state/county combinations fail with an error naming the state.
func (c *Cache) Get(ctx context.Context, state, county string, householdSize int) (*models.ReferenceDataEntry, error) {
	if householdSize < 1 {
		return nil, fmt.Errorf("invalid household size %d", householdSize)
	}

	state = strings.ToLower(strings.TrimSpace(state))
	county = strings.ToLower(strings.TrimSpace(county))
	key := fmt.Sprintf("%s-%s-%d", state, county, householdSize)

	if entry, ok := c.lookup(key); ok {
		metrics.ReferenceDataCacheHits.Inc()
		return entry, nil
	}
	metrics.ReferenceDataCacheMisses.Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the entry while this
		// goroutine waited on the flight group.
		if entry, ok := c.lookup(key); ok {
			return entry, nil
		}
		entry, err := c.load(ctx, state, county, householdSize)
		if err != nil {
			return nil, err
		}
		c.store(key, *entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ReferenceDataEntry), nil
}

// lookup returns a copy of a live entry, evicting it when expired.
func (c *Cache) lookup(key string) (*models.ReferenceDataEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.evict(key)
		return nil, false
	}
	data := entry.data
	return &data, true
}

func (c *Cache) store(key string, data models.ReferenceDataEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.evict(oldest)
			c.logger.Debug("reference data cache displaced oldest entry", map[string]interface{}{
				"evicted": oldest,
				"for":     key,
			})
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{data: data, storedAt: c.now()}
}

// evict removes the key from the map and insertion-order list. Caller
// holds the lock.
func (c *Cache) evict(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache) load(ctx context.Context, state, county string, householdSize int) (*models.ReferenceDataEntry, error) {
	data, err := c.loader.LoadState(ctx, state)
	if err != nil {
		return nil, err
	}

	countyData := data.County(county)
	if countyData == nil {
		return nil, fmt.Errorf("%w: no reference data for county %q in state %s", ErrDataNotFound, county, state)
	}

	ami, ok := amiForSize(countyData, householdSize)
	if !ok {
		return nil, fmt.Errorf("%w: no AMI brackets for county %q in state %s", ErrDataNotFound, county, state)
	}

	return &models.ReferenceDataEntry{
		State:         state,
		County:        county,
		Year:          data.Year,
		HouseholdSize: householdSize,
		AMI:           ami,
		IncomeLimit50: ami * limitPct50,
		IncomeLimit60: ami * limitPct60,
		IncomeLimit80: ami * limitPct80,
		FetchedAt:     c.now(),
	}, nil
}

// amiForSize returns the tabulated AMI for the household size, falling
// back to the largest documented bracket (typically 8+) when the exact
// size is not tabulated.
func amiForSize(county *models.CountyAMI, householdSize int) (float64, bool) {
	if ami, ok := county.ByHouseholdSize[householdSize]; ok {
		return ami, true
	}
	largest := 0
	for size := range county.ByHouseholdSize {
		if size > largest {
			largest = size
		}
	}
	if largest == 0 || householdSize < largest {
		return 0, false
	}
	return county.ByHouseholdSize[largest], true
}

// Len reports the number of live entries, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
