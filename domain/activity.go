package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultMaxActiveActivities is the slot cap used when configuration does not override it.
	DefaultMaxActiveActivities = 10

	MaxActivityNameLength        = 100
	MaxActivityDescriptionLength = 500
	MaxActivityIconLength        = 16

	DefaultActivityIcon = "✅"
)

// AllowedActivityIcons is the fixed icon palette an activity may use.
var AllowedActivityIcons = map[string]struct{}{
	"✅": {},
	"🏃": {},
	"💪": {},
	"📚": {},
	"🧘": {},
	"💧": {},
	"🍎": {},
	"🛌": {},
	"🧹": {},
	"💻": {},
	"📝": {},
	"🎯": {},
}

// Activity is a user-defined recurring habit.
type Activity struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	IsActive    bool       `json:"is_active"`
	ArchivedAt  *time.Time `json:"archived_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OwnedBy reports whether the activity belongs to userID.
func (a *Activity) OwnedBy(userID string) bool {
	return a != nil && userID != "" && a.UserID == userID
}

// Archive flips the activity to inactive and stamps archived_at.
func (a *Activity) Archive(now time.Time) error {
	if !a.IsActive {
		return Conflictf("activity is already archived")
	}
	ts := now.UTC()
	a.IsActive = false
	a.ArchivedAt = &ts
	return nil
}

// Restore flips the activity back to active and clears archived_at.
func (a *Activity) Restore() error {
	if a.IsActive {
		return Conflictf("activity is already active")
	}
	a.IsActive = true
	a.ArchivedAt = nil
	return nil
}

// ActivityInput carries the mutable fields of an activity.
type ActivityInput struct {
	Name        string
	Description string
	Icon        string
}

// Normalize trims surrounding whitespace.
func (in ActivityInput) Normalize() ActivityInput {
	return ActivityInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}
}

// Validate checks field lengths and the icon palette.
func (in ActivityInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Invalidf("activity name is required")
	}
	if utf8.RuneCountInString(in.Name) > MaxActivityNameLength {
		return Invalidf("activity name cannot exceed %d characters", MaxActivityNameLength)
	}
	if utf8.RuneCountInString(in.Description) > MaxActivityDescriptionLength {
		return Invalidf("activity description cannot exceed %d characters", MaxActivityDescriptionLength)
	}
	return ValidateIcon(in.Icon)
}

// ValidateIcon enforces a non-blank icon from the allowed palette.
func ValidateIcon(icon string) error {
	if strings.TrimSpace(icon) == "" {
		return Invalidf("activity icon is required")
	}
	if utf8.RuneCountInString(icon) > MaxActivityIconLength {
		return Invalidf("activity icon cannot exceed %d characters", MaxActivityIconLength)
	}
	if _, ok := AllowedActivityIcons[icon]; !ok {
		return Invalidf("activity icon %q is not supported", icon)
	}
	return nil
}

// ActivityList is the listing view with slot accounting.
type ActivityList struct {
	Activities     []Activity `json:"activities"`
	TotalCount     int        `json:"total_count"`
	ActiveCount    int        `json:"active_count"`
	RemainingSlots int        `json:"remaining_slots"`
}
