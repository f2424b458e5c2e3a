package repository

import (
	"context"

	"github.com/fastygo/habits/domain"
)

// DashboardCache memoizes computed dashboards. A miss returns (nil, nil).
type DashboardCache interface {
	Get(ctx context.Context, userID string, year, month int, today domain.Date) (*domain.Dashboard, error)
	Set(ctx context.Context, userID string, dashboard *domain.Dashboard) error
	// Invalidate drops every cached dashboard of the user.
	Invalidate(ctx context.Context, userID string) error
}
