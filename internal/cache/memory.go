package cache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"commute-route-service/internal/domain"
)

// MemoryRouteCache is a process-local RouteCache for single-process deployments and tests.
type MemoryRouteCache struct {
	store *ttlcache.Cache[string, domain.ResolvedRoute]
}

// NewMemoryRouteCache starts the expiry loop. A non-positive ttl falls back to TTL.
func NewMemoryRouteCache(ttl time.Duration) *MemoryRouteCache {
	if ttl <= 0 {
		ttl = TTL
	}
	store := ttlcache.New(
		ttlcache.WithTTL[string, domain.ResolvedRoute](ttl),
		ttlcache.WithDisableTouchOnHit[string, domain.ResolvedRoute](),
	)
	go store.Start()
	return &MemoryRouteCache{store: store}
}

// Set overwrites the user's route and resets its TTL.
func (c *MemoryRouteCache) Set(_ context.Context, userID string, r domain.ResolvedRoute) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("route cache: empty user id")
	}
	r.Segments = slices.Clone(r.Segments)
	c.store.Set(Key(userID), r, ttlcache.DefaultTTL)
	return nil
}

// Get returns a copy of the user's route, or found=false when absent or expired.
func (c *MemoryRouteCache) Get(_ context.Context, userID string) (domain.ResolvedRoute, bool, error) {
	item := c.store.Get(Key(userID))
	if item == nil || item.IsExpired() {
		return domain.ResolvedRoute{}, false, nil
	}
	r := item.Value()
	r.Segments = slices.Clone(r.Segments)
	return r, true, nil
}

// Ping always succeeds.
func (c *MemoryRouteCache) Ping(context.Context) error { return nil }

// Close stops the expiry loop.
func (c *MemoryRouteCache) Close() error {
	c.store.Stop()
	return nil
}
