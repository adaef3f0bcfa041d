package authz

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"
)

// Checker is the decision boundary consumed by middleware. It wraps the
// Resolver with a TTL cache and deduplicates concurrent recomputation.
//
// Checker fails closed: any error while determining the effective set
// results in a non-allowed outcome, never a silent grant.
type Checker struct {
	resolver *Resolver
	cache    *EffectiveCache
	logger   *slog.Logger
	group    singleflight.Group
}

// NewChecker constructs a Checker. cache may be nil to disable caching.
func NewChecker(resolver *Resolver, cache *EffectiveCache, logger *slog.Logger) *Checker {
	return &Checker{resolver: resolver, cache: cache, logger: logger}
}

// EffectivePermissions returns the user's current effective set as a sorted
// slice, served from cache when possible.
func (c *Checker) EffectivePermissions(ctx context.Context, userID int64, role string) ([]string, error) {
	if cached, ok, err := c.cache.Get(ctx, userID, role); err == nil && ok {
		return cached, nil
	} else if err != nil && c.logger != nil {
		c.logger.Warn("effective cache read", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	key := fmt.Sprintf("%d:%s", userID, roleToken(role))
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		set, err := c.resolver.Resolve(ctx, userID, role)
		if err != nil {
			return nil, err
		}
		codes := make([]string, 0, len(set))
		for code := range set {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		if err := c.cache.Set(ctx, userID, role, codes); err != nil && c.logger != nil {
			c.logger.Warn("effective cache write", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return codes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// HasPermission reports whether code is in the user's effective set. On any
// resolution failure it returns false together with the error.
func (c *Checker) HasPermission(ctx context.Context, userID int64, role, code string) (bool, error) {
	codes, err := c.EffectivePermissions(ctx, userID, role)
	if err != nil {
		return false, err
	}
	for _, granted := range codes {
		if granted == code {
			return true, nil
		}
	}
	return false, nil
}

// Require evaluates the same predicate as HasPermission but yields a typed
// decision so callers can tell "denied" apart from "could not determine".
func (c *Checker) Require(ctx context.Context, userID int64, role, code string) Decision {
	ok, err := c.HasPermission(ctx, userID, role, code)
	if err != nil {
		return Decision{Outcome: OutcomeUnavailable, Code: code, Err: err}
	}
	if !ok {
		return Decision{Outcome: OutcomeDenied, Code: code}
	}
	return Decision{Outcome: OutcomeAllowed, Code: code}
}
