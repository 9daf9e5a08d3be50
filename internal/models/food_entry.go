package models

import (
	"time"

	"github.com/google/uuid"
)

// Meal types accepted for a food entry. Anything else collapses to "other".
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeOther     = "other"
)

// FoodEntry is one logged meal: a photo plus metadata, owned by a single user.
// IDs are assigned client-side before the insert so a successful-but-empty
// response from the store can still be treated as success.
type FoodEntry struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	MealDate    time.Time `gorm:"not null" json:"meal_date"`
	MealType    string    `gorm:"size:20;not null;default:'other'" json:"meal_type"`
	// ImageData holds the photo inline as a data URI (mime type + base64).
	ImageData string    `gorm:"type:text" json:"image_data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the conceptual table name stable across gorm versions.
func (FoodEntry) TableName() string {
	return "food_entries"
}

// NormalizeMealType maps free-form input onto the accepted meal types.
func NormalizeMealType(t string) string {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner:
		return t
	default:
		return MealTypeOther
	}
}
