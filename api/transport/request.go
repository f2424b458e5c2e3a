package transport

type ProfileUpdateRequest struct {
	Nickname string `json:"nickname"`
}

type ActivityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// StatusUpdateRequest sets completion for one calendar day, formatted YYYY-MM-DD.
type StatusUpdateRequest struct {
	Date        string `json:"date"`
	IsCompleted *bool  `json:"is_completed"`
}

type PlanUpdateRequest struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	ActivityIDs []string `json:"activity_ids"`
}
