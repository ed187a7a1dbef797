package catalog

import (
	"time"

	"github.com/heatparts/storefront/pkg/cache"
	"github.com/heatparts/storefront/pkg/types"
)

// Cache holds the slow-changing catalog lookups. Build one per process and
// share it by reference.
type Cache struct {
	categories    *cache.TTL[int64, []types.Category]
	appliances    *cache.TTL[int64, []types.Appliance]
	manufacturers *cache.TTL[string, []Manufacturer]
}

// NewCache builds the lookup caches with a shared ttl and clock.
func NewCache(ttl time.Duration, clock cache.Clock) *Cache {
	return &Cache{
		categories:    cache.NewTTL[int64, []types.Category](ttl, clock),
		appliances:    cache.NewTTL[int64, []types.Appliance](ttl, clock),
		manufacturers: cache.NewTTL[string, []Manufacturer](ttl, clock),
	}
}

// Purge drops every cached lookup.
func (c *Cache) Purge() {
	c.categories.Purge()
	c.appliances.Purge()
	c.manufacturers.Purge()
}
