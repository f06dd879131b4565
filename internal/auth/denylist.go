package auth

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Denylist records revoked token ids until the tokens would have expired.
type Denylist interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// CacheDenylist keeps revoked token ids in an in-process bigcache. Entries
// live for the token TTL, which outlasts any token they block.
type CacheDenylist struct {
	cache *bigcache.BigCache
}

func NewCacheDenylist(ctx context.Context, ttl time.Duration) (*CacheDenylist, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntrySize = 64
	cfg.Verbose = false
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &CacheDenylist{cache: cache}, nil
}

func (d *CacheDenylist) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return errors.New("token id is required")
	}
	value, err := expiresAt.UTC().MarshalBinary()
	if err != nil {
		return err
	}
	return d.cache.Set(id, value)
}

func (d *CacheDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, err := d.cache.Get(id)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *CacheDenylist) Close() error {
	return d.cache.Close()
}
