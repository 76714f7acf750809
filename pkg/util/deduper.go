package util

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DedupStore is the slice of the redis client the deduper needs.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Deduper struct {
	rdb    DedupStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb DedupStore, ttl time.Duration) *Deduper {
	return NewDeduperWithLogger(rdb, ttl, nil)
}

// NewDeduperWithLogger creates a deduper with logger support
func NewDeduperWithLogger(rdb DedupStore, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a given handler + fingerprint.
// returns true if this is the FIRST time processing
// returns false if it's a duplicate
func (d *Deduper) AcquireOnce(ctx context.Context, handler, fingerprint string) bool {
	key := dedupKey(handler, fingerprint)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis 不可用时不阻止处理
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("dedup_key", key),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Release drops the lock so the same event can be processed again, e.g. after
// the first attempt failed.
func (d *Deduper) Release(ctx context.Context, handler, fingerprint string) {
	key := dedupKey(handler, fingerprint)
	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		d.logger.Warn("Redis dedup release failed",
			zap.String("handler", handler),
			zap.String("dedup_key", key),
			zap.Error(err),
		)
	}
}

func dedupKey(handler, fingerprint string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, fingerprint)
}

// Fingerprint hashes the given parts into a stable hex key. Parts are
// separated by NUL so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
