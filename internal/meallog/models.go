package meallog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mealvoice/server/internal/nutrition"
	"github.com/mealvoice/server/internal/storage"
)

// SubmitMealRequest is the body for POST /v1/meals. A submission carries
// either a typed description or a base64 audio clip; when both are set
// the typed text wins and transcription is skipped.
type SubmitMealRequest struct {
	TranscribedMeal string `json:"transcribed_meal"`
	Audio           string `json:"audio"`
	Format          string `json:"format"`
	LoggedAt        string `json:"logged_at"` // RFC 3339, defaults to now
}

// MealDTO is the wire shape of one logged meal.
type MealDTO struct {
	ID             uuid.UUID       `json:"id"`
	LoggedAt       time.Time       `json:"logged_at"`
	MealDate       string          `json:"meal_date"`
	IsLoading      bool            `json:"is_loading"`
	Transcription  *string         `json:"transcription"`
	Nutrition      json.RawMessage `json:"nutrition"`
	FailureMessage *string         `json:"failure_message"`
	MealType       string          `json:"meal_type"`
}

// Totals are the running macro sums for a day. Only meals with a
// successful estimation contribute.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// MealGroup is one display bucket of meals sharing a meal-type label.
type MealGroup struct {
	MealType string    `json:"meal_type"`
	Meals    []MealDTO `json:"meals"`
}

// DailyTotalsResponse is the body for GET /v1/meals/daily.
type DailyTotalsResponse struct {
	Date              string      `json:"date"`
	TargetCalories    int         `json:"target_calories"`
	Totals            Totals      `json:"totals"`
	RemainingCalories int         `json:"remaining_calories"`
	Groups            []MealGroup `json:"groups"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toDTO maps a stored meal onto the wire shape. The meal-type label comes
// from the successful analysis and falls back to Snack while loading,
// after a failure, or for unknown labels.
func toDTO(meal storage.LoggedMeal) MealDTO {
	dto := MealDTO{
		ID:             meal.ID,
		LoggedAt:       meal.LoggedAt,
		MealDate:       meal.MealDate,
		IsLoading:      meal.IsLoading,
		Transcription:  meal.Transcription,
		FailureMessage: meal.FailureMessage,
		MealType:       "Snack",
	}

	if len(meal.Nutrition) > 0 {
		dto.Nutrition = json.RawMessage(meal.Nutrition)
		if resp, err := nutrition.Decode(meal.Nutrition); err == nil {
			if analysis, ok := resp.Analysis(); ok {
				dto.MealType = nutrition.DisplayMealType(analysis.MealType)
			}
		}
	}

	return dto
}
