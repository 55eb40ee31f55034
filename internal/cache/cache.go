// Package cache defines the byte cache used for advisory secondary-key lookups
// (scheme by code, device by fingerprint). The store is always the authority;
// entries are invalidated on every mutation of the cached entity.
package cache

import "time"

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
	Delete(key string)
}
