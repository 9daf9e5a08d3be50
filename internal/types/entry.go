package types

import (
	"time"

	"github.com/plateful/backend/internal/models"
)

// Pagination describes the slice of history returned to the client.
// TotalPages is ceil(Total/Limit), 0 when the user has no entries.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// HistoryPage is one page of a user's food entry history, newest first.
type HistoryPage struct {
	Entries    []models.FoodEntry `json:"entries"`
	Pagination Pagination         `json:"pagination"`
}

// HistoryFilter restricts history to an inclusive date range. Bounds are
// normalized to start-of-day and end-of-day in local calendar terms.
type HistoryFilter struct {
	From *time.Time
	To   *time.Time
}

// EntryInput is the material for a new food entry. UserID and ImageData are
// mandatory; everything else is defaulted by the service.
type EntryInput struct {
	Name        string
	Description string
	MealType    string
	MealDate    *time.Time
	ImageData   string
}

// EntryUpdate is a partial field replacement. Nil fields are left untouched;
// updated_at is always stamped server-side.
type EntryUpdate struct {
	Name        *string
	Description *string
	MealType    *string
	MealDate    *time.Time
	ImageData   *string
}

// EntryStats summarizes a user's logging activity.
type EntryStats struct {
	TotalEntries    int64      `json:"total_entries"`
	FirstEntry      *time.Time `json:"first_entry"`
	LastEntry       *time.Time `json:"last_entry"`
	DaysWithEntries int        `json:"days_with_entries"`
}
