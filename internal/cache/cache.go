// Package cache provides the time-boxed response cache for name-based plant
// lookups. It keeps identical searches stable for the TTL window and spares
// redundant calls to the identification model.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/pkg/models"
)

const keyPrefix = "plantae_cache_"

// KV is the minimal key-value surface the cache needs. *sqlite.Store
// satisfies it.
type KV interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// entry is the persisted payload: the record plus its write time.
type entry struct {
	Data models.PlantRecord `json:"data"`
	TS   int64              `json:"ts"`
}

// Cache is a TTL cache of plant detail lookups keyed by normalized name.
type Cache struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

// New creates a cache over kv with the given TTL.
func New(kv KV, ttl time.Duration) *Cache {
	return &Cache{kv: kv, ttl: ttl, now: time.Now}
}

// Normalize turns a plant name into a stable cache key fragment: lowercased,
// whitespace runs collapsed to single hyphens.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Get returns the cached record for name. A missing, malformed, or expired
// entry is a miss; expired entries are evicted on the way out.
func (c *Cache) Get(ctx context.Context, name string) (*models.PlantRecord, bool) {
	key := keyPrefix + Normalize(name)

	raw, ok, err := c.kv.GetValue(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, false
	}

	if c.now().UnixMilli()-e.TS > c.ttl.Milliseconds() {
		if err := c.kv.DeleteValue(ctx, key); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("Failed to evict stale cache entry")
		}
		return nil, false
	}
	return &e.Data, true
}

// Set writes record under the normalized name with the current timestamp.
// A cache write is an optimization; failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, name string, record models.PlantRecord) {
	payload, err := json.Marshal(entry{Data: record, TS: c.now().UnixMilli()})
	if err != nil {
		return
	}

	key := keyPrefix + Normalize(name)
	if err := c.kv.SetValue(ctx, key, string(payload)); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}
