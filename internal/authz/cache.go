package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// EffectiveCache caches computed effective permission sets in Redis.
//
// Keys carry a per-user version counter; invalidation bumps the counter so
// stale entries become unreachable and expire on their own. The writer that
// mutated overrides observes its own change immediately; other processes may
// serve up to one TTL of staleness, which is the accepted trade-off.
type EffectiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEffectiveCache instantiates the cache helper. A nil client disables
// caching; every lookup is then a miss.
func NewEffectiveCache(client *redis.Client, ttl time.Duration) *EffectiveCache {
	return &EffectiveCache{client: client, ttl: ttl}
}

func (c *EffectiveCache) versionKey(userID int64) string {
	return fmt.Sprintf("authz:ver:%d", userID)
}

func (c *EffectiveCache) entryKey(userID int64, role string, version int64) string {
	return fmt.Sprintf("authz:effective:%d:%s:%d", userID, roleToken(role), version)
}

func roleToken(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return "-"
	}
	return strings.ReplaceAll(role, ":", "_")
}

func (c *EffectiveCache) version(ctx context.Context, userID int64) (int64, error) {
	// A missing key reads as version 0; the first Invalidate INCRs it to 1,
	// which moves every entry written under version 0 out of reach.
	ver, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Get returns the cached effective set for (userID, role), if present.
func (c *EffectiveCache) Get(ctx context.Context, userID int64, role string) ([]string, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	ver, err := c.version(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, c.entryKey(userID, role, ver)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var codes []string
	if err := json.Unmarshal(payload, &codes); err != nil {
		return nil, false, err
	}
	return codes, true, nil
}

// Set stores the effective set for (userID, role) under the current version.
func (c *EffectiveCache) Set(ctx context.Context, userID int64, role string, codes []string) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.version(ctx, userID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.entryKey(userID, role, ver), payload, c.ttl).Err()
}

// Invalidate bumps the user's version so all cached sets for that user stop
// resolving. Must be called before a mutation reports success.
func (c *EffectiveCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey(userID)).Err()
}
