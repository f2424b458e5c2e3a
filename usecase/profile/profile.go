package profile

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
	"github.com/fastygo/habits/usecase"
)

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
	now    func() time.Time
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile sets the nickname, creating the local user row on first use.
// The email comes from the identity token and is kept when absent.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, email, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, domain.Invalidf("nickname is required")
	}
	if utf8.RuneCountInString(nickname) > domain.MaxNicknameLength {
		return nil, domain.Invalidf("nickname cannot exceed %d characters", domain.MaxNicknameLength)
	}

	user, err := uc.users.GetByID(ctx, userID)
	switch {
	case err == nil:
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		user = &domain.User{ID: userID}
	default:
		// Store unreachable: build the row from what the request carries.
		uc.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		user = &domain.User{ID: userID}
	}

	if email != "" {
		user.Email = email
	}
	user.Nickname = nickname
	user.Touch(uc.now().UTC())

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpsert, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
