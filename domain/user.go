package domain

import "time"

// MaxNicknameLength bounds the profile nickname.
const MaxNicknameLength = 50

// User is the locally stored profile of an externally authenticated identity.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Touch(now time.Time) {
	if u == nil {
		return
	}
	u.UpdatedAt = now
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}
