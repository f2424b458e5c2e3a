package domain

import "time"

// ActivityLog marks whether an activity was completed on one calendar day.
// At most one log exists per (activity, date).
type ActivityLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ActivityID  string    `json:"activity_id"`
	Date        Date      `json:"date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusUpdate is a request to set completion for one day.
type StatusUpdate struct {
	Date        string
	IsCompleted bool
}
