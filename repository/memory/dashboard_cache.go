package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type DashboardCache struct {
	mu      sync.Mutex
	entries map[string]map[string]domain.Dashboard
}

func NewDashboardCache() *DashboardCache {
	return &DashboardCache{entries: make(map[string]map[string]domain.Dashboard)}
}

func (c *DashboardCache) Get(_ context.Context, userID string, year, month int, today domain.Date) (*domain.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dashboard, ok := c.entries[userID][cacheKey(year, month, today)]
	if !ok {
		return nil, nil
	}
	return &dashboard, nil
}

func (c *DashboardCache) Set(_ context.Context, userID string, dashboard *domain.Dashboard) error {
	if dashboard == nil {
		return domain.ErrInvalidPayload
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[userID] == nil {
		c.entries[userID] = make(map[string]domain.Dashboard)
	}
	c.entries[userID][cacheKey(dashboard.Year, dashboard.Month, dashboard.ComputedFor)] = *dashboard
	return nil
}

func (c *DashboardCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

func cacheKey(year, month int, today domain.Date) string {
	return fmt.Sprintf("%04d-%02d:%s", year, month, today)
}

var _ repository.DashboardCache = (*DashboardCache)(nil)
