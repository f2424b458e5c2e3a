package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/internal/infrastructure/buffer"
	"github.com/fastygo/habits/usecase"
)

// BufferBridge turns use case writes into buffer items.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if b.processor == nil || user == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    user.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferActivityLog(ctx context.Context, operation string, log *domain.ActivityLog) error {
	if b.processor == nil || log == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(log)
	if err != nil {
		return err
	}
	// Every log write shares one priority so replays keep enqueue order.
	item := buffer.Item{
		UserID:    log.UserID,
		Entity:    buffer.EntityActivityLog,
		Operation: operation,
		Data:      payload,
		Priority:  2,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
