// Package cache holds recently computed screening rows in Redis so repeated
// screens of the same ticker under the same filter configuration skip the
// rule evaluation. The cache is an accelerator, never an authority: any
// Redis failure degrades to a recompute.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const verdictKeyPrefix = "tenet:verdict:"

// VerdictCache stores serialized screening rows keyed by ticker and a filter
// fingerprint. Rows computed under different filters never collide.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a verdict cache. A nil client yields a nil cache, which every
// method treats as a miss.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *VerdictCache {
	if client == nil {
		return nil
	}
	return &VerdictCache{client: client, ttl: ttl, logger: logger}
}

// Fingerprint derives a stable key component from a filter configuration.
// Equal filters must produce equal fingerprints regardless of field order in
// the original request.
func Fingerprint(filters any) string {
	payload, err := json.Marshal(filters)
	if err != nil {
		return "unfingerprintable"
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

// Get returns the cached payload for (ticker, fingerprint), or ok=false on a
// miss or any Redis failure.
func (c *VerdictCache) Get(ctx context.Context, ticker, fingerprint string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(ticker, fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "verdict cache read failed", "ticker", ticker, "error", err)
		return nil, false
	}
	return payload, true
}

// Set stores the payload with the configured TTL. Failures are logged and
// swallowed.
func (c *VerdictCache) Set(ctx context.Context, ticker, fingerprint string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ticker, fingerprint), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "verdict cache write failed", "ticker", ticker, "error", err)
	}
}

// Invalidate drops every cached row for a ticker, across all filter
// fingerprints. Called after registry writes that can change a verdict.
func (c *VerdictCache) Invalidate(ctx context.Context, ticker string) {
	if c == nil || ticker == "" {
		return
	}
	pattern := verdictKeyPrefix + strings.ToUpper(ticker) + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.WarnContext(ctx, "verdict cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "verdict cache scan failed", "ticker", ticker, "error", err)
	}
}

func (c *VerdictCache) key(ticker, fingerprint string) string {
	return fmt.Sprintf("%s%s:%s", verdictKeyPrefix, strings.ToUpper(ticker), fingerprint)
}
