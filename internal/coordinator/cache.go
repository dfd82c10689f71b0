package coordinator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"go-screen-perception/internal/detector"
	"go-screen-perception/pkg/models"
)

// Cache holds recent detection bundles keyed by screenshot content. Entries
// expire after the TTL so a stale screen is never served once the UI moves
// on; the size bound protects memory on bursty traffic.
type Cache struct {
	lru *expirable.LRU[string, *models.DetectionBundle]
}

// NewCache creates a bounded TTL cache.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, *models.DetectionBundle](size, nil, ttl),
	}
}

// CacheKey derives the lookup key for a pass. The screenshot bytes dominate;
// the application name and the options are mixed in so differently-configured
// passes never collide.
func CacheKey(raw []byte, appName string, opts detector.DetectOptions) string {
	h := sha256.New()
	h.Write(raw)
	fmt.Fprintf(h, "|%s|%+v", appName, opts)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached bundle when present and fresh.
func (c *Cache) Get(key string) (*models.DetectionBundle, bool) {
	return c.lru.Get(key)
}

// Add stores a bundle under the key.
func (c *Cache) Add(key string, bundle *models.DetectionBundle) {
	c.lru.Add(key, bundle)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
