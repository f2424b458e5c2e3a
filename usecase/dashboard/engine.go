package dashboard

import (
	"math"
	"time"

	"github.com/fastygo/habits/domain"
)

// MonthWindow pins a target month against the real-world current date.
type MonthWindow struct {
	Year        int
	Month       time.Month
	DaysInMonth int
	// CurrentDay is today's day-of-month when the window is the current month,
	// otherwise DaysInMonth (past and future months count as fully elapsed).
	CurrentDay int
	Today      domain.Date
}

// NewMonthWindow resolves the window for (year, month) as seen at now.
func NewMonthWindow(year, month int, now time.Time) (MonthWindow, error) {
	if month < 1 || month > 12 {
		return MonthWindow{}, domain.Invalidf("month must be between 1 and 12")
	}
	if year < 1 {
		return MonthWindow{}, domain.Invalidf("year must be positive")
	}

	w := MonthWindow{
		Year:        year,
		Month:       time.Month(month),
		DaysInMonth: DaysInMonth(year, time.Month(month)),
		Today:       domain.DateOf(now),
	}
	w.CurrentDay = w.DaysInMonth
	if w.IsCurrent() {
		w.CurrentDay = w.Today.Day
	}
	return w, nil
}

// IsCurrent reports whether today falls inside the window.
func (w MonthWindow) IsCurrent() bool {
	return w.Today.InMonth(w.Year, w.Month)
}

// First and Last bound the window's calendar days.
func (w MonthWindow) First() domain.Date {
	return domain.Date{Year: w.Year, Month: w.Month, Day: 1}
}

func (w MonthWindow) Last() domain.Date {
	return domain.Date{Year: w.Year, Month: w.Month, Day: w.DaysInMonth}
}

// DaysInMonth follows the proleptic Gregorian calendar.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CompletedDates collects the days with an explicit completed log.
// Logs marked not completed and absent days are treated the same.
func CompletedDates(logs []domain.ActivityLog) map[domain.Date]struct{} {
	completed := make(map[domain.Date]struct{}, len(logs))
	for _, log := range logs {
		if log.IsCompleted {
			completed[log.Date] = struct{}{}
		}
	}
	return completed
}

// CompletionHistory returns one entry per day of the window, index i for day i+1.
func CompletionHistory(w MonthWindow, completed map[domain.Date]struct{}) []bool {
	history := make([]bool, w.DaysInMonth)
	for day := 1; day <= w.DaysInMonth; day++ {
		_, ok := completed[domain.Date{Year: w.Year, Month: w.Month, Day: day}]
		history[day-1] = ok
	}
	return history
}

// CurrentStreak counts consecutive completed days ending at currentDay. When
// currentDay itself is not completed the run may end the day before, so a
// streak is not shown as broken until the day is over.
func CurrentStreak(history []bool, currentDay int) int {
	if len(history) == 0 {
		return 0
	}
	today := currentDay - 1
	if today >= len(history) {
		today = len(history) - 1
	}

	switch {
	case today >= 0 && history[today]:
		return runEndingAt(history, today)
	case today > 0 && history[today-1]:
		return runEndingAt(history, today-1)
	default:
		return 0
	}
}

func runEndingAt(history []bool, end int) int {
	streak := 0
	for i := end; i >= 0 && history[i]; i-- {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive completed days.
func LongestStreak(history []bool) int {
	longest, current := 0, 0
	for _, done := range history {
		if !done {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// Percentage returns part/whole*100 rounded to two decimals; zero when whole is zero.
func Percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}

// Compute builds the analytics record of one activity for the window.
func Compute(activity domain.Activity, logs []domain.ActivityLog, w MonthWindow) domain.ActivityAnalytics {
	completed := CompletedDates(logs)
	// Only days of the window count, whatever range the store returned.
	for date := range completed {
		if !date.InMonth(w.Year, w.Month) {
			delete(completed, date)
		}
	}

	history := CompletionHistory(w, completed)
	total := len(completed)

	_, doneToday := completed[w.Today]

	return domain.ActivityAnalytics{
		ActivityID:          activity.ID,
		ActivityName:        activity.Name,
		ActivityDescription: activity.Description,
		CompletionHistory:   history,
		TotalCompleted:      total,
		CurrentStreak:       CurrentStreak(history, w.CurrentDay),
		LongestStreak:       LongestStreak(history),
		EffortScore:         Percentage(total, w.CurrentDay),
		MonthlyProgress:     Percentage(total, w.DaysInMonth),
		IsCompletedToday:    w.IsCurrent() && doneToday,
	}
}
