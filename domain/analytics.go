package domain

import "time"

// ActivityAnalytics is the per-activity, per-month analytics record.
type ActivityAnalytics struct {
	ActivityID          string  `json:"activity_id"`
	ActivityName        string  `json:"activity_name"`
	ActivityDescription string  `json:"activity_description"`
	CompletionHistory   []bool  `json:"completion_history"`
	TotalCompleted      int     `json:"total_completed"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	EffortScore         float64 `json:"effort_score"`
	MonthlyProgress     float64 `json:"monthly_progress"`
	IsCompletedToday    bool    `json:"is_completed_today"`
}

// Dashboard groups analytics for every active activity in a month.
type Dashboard struct {
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	DaysInMonth int                 `json:"days_in_month"`
	CurrentDay  int                 `json:"current_day"`
	Activities  []ActivityAnalytics `json:"activities"`
	ComputedFor Date                `json:"computed_for"`
}

// MonthOf returns the (year, month) pair of t in UTC.
func MonthOf(t time.Time) (int, int) {
	y, m, _ := t.UTC().Date()
	return y, int(m)
}
