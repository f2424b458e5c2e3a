package domain

import "time"

const (
	MinPlanYear = 2000
	MaxPlanYear = 2100
)

// MonthlySelection records that an activity is tracked in a given month.
type MonthlySelection struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ActivityID string    `json:"activity_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MonthlyPlan is the read model of one month's selection.
type MonthlyPlan struct {
	Year          int               `json:"year"`
	Month         int               `json:"month"`
	MaxActivities int               `json:"max_activities"`
	SelectedCount int               `json:"selected_count"`
	Activities    []MonthlyPlanItem `json:"activities"`
}

type MonthlyPlanItem struct {
	ActivityID  string `json:"activity_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsSelected  bool   `json:"is_selected"`
	IsArchived  bool   `json:"is_archived"`
}

// PlanUpdate is the full replacement set submitted for a month.
type PlanUpdate struct {
	Year        int
	Month       int
	ActivityIDs []string
}

// ValidateYearMonth enforces the planning calendar range.
func ValidateYearMonth(year, month int) error {
	if year < MinPlanYear || year > MaxPlanYear {
		return Invalidf("year must be between %d and %d", MinPlanYear, MaxPlanYear)
	}
	if month < 1 || month > 12 {
		return Invalidf("month must be between 1 and 12")
	}
	return nil
}

// PreviousMonth returns the calendar month preceding (year, month).
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
