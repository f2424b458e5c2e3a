package usecase

import (
	"context"

	"github.com/fastygo/habits/domain"
)

// OperationUpsert is the only buffered write: replays must be idempotent.
const OperationUpsert = "upsert"

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferActivityLog(ctx context.Context, operation string, log *domain.ActivityLog) error
}
