// Package memory backs the lookup cache with patrickmn/go-cache. Entries are
// JSON-encoded entities keyed by secondary lookup (scheme code, device
// fingerprint); the janitor sweeps expired entries once a minute.
package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/digipraman/loantrack/internal/cache"
)

const sweepInterval = time.Minute

type mem struct{ c *gocache.Cache }

// New returns a process-local cache.Cache with the given default TTL.
func New(defaultTTL time.Duration) cache.Cache {
	return &mem{c: gocache.New(defaultTTL, sweepInterval)}
}

func (m *mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *mem) Set(k string, v []byte, ttl time.Duration) { m.c.Set(k, v, ttl) }
func (m *mem) Delete(k string)                           { m.c.Delete(k) }
