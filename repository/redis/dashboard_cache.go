package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type dashboardCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewDashboardCache creates a Redis-backed dashboard cache.
// Entries are namespaced by a per-user version that Invalidate bumps, so
// stale dashboards are never read back and simply expire.
func NewDashboardCache(client *redislib.Client, ttl time.Duration) repository.DashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardCache{
		client: client,
		prefix: "dashboard:",
		ttl:    ttl,
	}
}

func (c *dashboardCache) Get(ctx context.Context, userID string, year, month int, today domain.Date) (*domain.Dashboard, error) {
	version, err := c.version(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := c.client.Get(ctx, c.key(userID, version, year, month, today)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var dashboard domain.Dashboard
	if err := json.Unmarshal(result, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (c *dashboardCache) Set(ctx context.Context, userID string, dashboard *domain.Dashboard) error {
	if dashboard == nil {
		return domain.ErrInvalidPayload
	}
	version, err := c.version(ctx, userID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}

	key := c.key(userID, version, dashboard.Year, dashboard.Month, dashboard.ComputedFor)
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func (c *dashboardCache) Invalidate(ctx context.Context, userID string) error {
	// The counter never expires: a reset would make entries written under an
	// earlier version readable again.
	return c.client.Incr(ctx, c.versionKey(userID)).Err()
}

func (c *dashboardCache) version(ctx context.Context, userID string) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func (c *dashboardCache) versionKey(userID string) string {
	return fmt.Sprintf("%sversion:%s", c.prefix, userID)
}

func (c *dashboardCache) key(userID string, version int64, year, month int, today domain.Date) string {
	return fmt.Sprintf("%s%s:v%d:%04d-%02d:%s", c.prefix, userID, version, year, month, today)
}
