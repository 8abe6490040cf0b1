package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pos-api/dtos"
)

// ReportCache stores generated reports. Key resolves a logical key against the
// current generation; resolve it before reading the database so a report built
// from pre-commit data is never stored under a newer generation. Invalidate
// must make every earlier entry unreachable.
type ReportCache interface {
	Key(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, fullKey string) (*dtos.Report, bool)
	Set(ctx context.Context, fullKey string, report *dtos.Report)
	Invalidate(ctx context.Context) error
}

type noopReportCache struct{}

func (noopReportCache) Key(_ context.Context, key string) (string, error) { return key, nil }
func (noopReportCache) Get(context.Context, string) (*dtos.Report, bool)  { return nil, false }
func (noopReportCache) Set(context.Context, string, *dtos.Report)        {}
func (noopReportCache) Invalidate(context.Context) error                 { return nil }

const (
	reportVersionKey = "pos:reports:version"
	reportKeyPrefix  = "pos:reports"
)

// RedisReportCache namespaces entries under a version counter. Bumping the
// counter orphans old entries, which then expire through their TTL.
type RedisReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache returns a redis-backed cache, or a no-op one when rdb is nil.
func NewReportCache(rdb *redis.Client, ttl time.Duration) ReportCache {
	if rdb == nil || ttl <= 0 {
		return noopReportCache{}
	}
	return &RedisReportCache{rdb: rdb, ttl: ttl}
}

func (c *RedisReportCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, reportVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisReportCache) Key(ctx context.Context, key string) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", reportKeyPrefix, v, key), nil
}

func (c *RedisReportCache) Get(ctx context.Context, fullKey string) (*dtos.Report, bool) {
	raw, err := c.rdb.Get(ctx, fullKey).Bytes()
	if err != nil {
		return nil, false
	}
	var report dtos.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (c *RedisReportCache) Set(ctx context.Context, fullKey string, report *dtos.Report) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, fullKey, raw, c.ttl)
}

func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, reportVersionKey).Err()
}
