package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/habits/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ActivityLogResponse is returned by the status update endpoint.
type ActivityLogResponse struct {
	ID          string    `json:"id"`
	ActivityID  string    `json:"activity_id"`
	Date        string    `json:"date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewActivityLogResponse(log *domain.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:          log.ID,
		ActivityID:  log.ActivityID,
		Date:        log.Date.String(),
		IsCompleted: log.IsCompleted,
		CreatedAt:   log.CreatedAt,
	}
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

func NewProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		CreatedAt: user.CreatedAt,
	}
}
