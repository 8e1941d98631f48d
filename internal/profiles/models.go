package profiles

import (
	"fmt"
	"time"

	"github.com/mealvoice/server/internal/units"
)

// ProfileDTO is the wire representation of a user profile. Height and
// weight are always metric; units_preference only drives client-side
// display.
type ProfileDTO struct {
	UserID              string    `json:"user_id"`
	UnitsPreference     string    `json:"units_preference"`
	Sex                 string    `json:"sex"`
	Age                 int       `json:"age"`
	HeightCm            int       `json:"height_cm"`
	WeightKg            float64   `json:"weight_kg"`
	ActivityLevel       string    `json:"activity_level"`
	DietaryPreferences  []string  `json:"dietary_preferences"`
	Allergies           []string  `json:"allergies"`
	Goal                string    `json:"goal"`
	TargetCalories      int       `json:"target_calories"`
	CarbsPercent        int       `json:"carbs_percent"`
	FatsPercent         int       `json:"fats_percent"`
	ProteinPercent      int       `json:"protein_percent"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GetProfileResponse wraps the profile with a flag telling the client
// whether it is a computed default rather than a stored record.
type GetProfileResponse struct {
	Profile   ProfileDTO `json:"profile"`
	IsDefault bool       `json:"is_default"`
}

// UpsertProfileRequest is the body for PUT /v1/profile. Target calories
// and macro percentages may be omitted; the server then derives them
// from the biometrics and goal.
type UpsertProfileRequest struct {
	UnitsPreference     string   `json:"units_preference"`
	Sex                 string   `json:"sex"`
	Age                 int      `json:"age"`
	HeightCm            int      `json:"height_cm"`
	WeightKg            float64  `json:"weight_kg"`
	ActivityLevel       string   `json:"activity_level"`
	DietaryPreferences  []string `json:"dietary_preferences"`
	Allergies           []string `json:"allergies"`
	Goal                string   `json:"goal"`
	TargetCalories      *int     `json:"target_calories"`
	CarbsPercent        *int     `json:"carbs_percent"`
	FatsPercent         *int     `json:"fats_percent"`
	ProteinPercent      *int     `json:"protein_percent"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
}

// Validate checks tokens and ranges.
func (r *UpsertProfileRequest) Validate() error {
	if r.UnitsPreference != "metric" && r.UnitsPreference != "imperial" {
		return fmt.Errorf("units_preference must be metric or imperial")
	}

	if !units.ValidSex(units.Sex(r.Sex)) {
		return fmt.Errorf("sex must be male or female")
	}

	if !units.ValidActivityLevel(units.ActivityLevel(r.ActivityLevel)) {
		return fmt.Errorf("unknown activity_level %q", r.ActivityLevel)
	}

	if !units.ValidGoal(units.Goal(r.Goal)) {
		return fmt.Errorf("unknown goal %q", r.Goal)
	}

	if r.Age < 13 || r.Age > 120 {
		return fmt.Errorf("age must be between 13 and 120")
	}

	if r.HeightCm < 90 || r.HeightCm > 250 {
		return fmt.Errorf("height_cm must be between 90 and 250")
	}

	if r.WeightKg < 25 || r.WeightKg > 400 {
		return fmt.Errorf("weight_kg must be between 25 and 400")
	}

	if r.TargetCalories != nil && (*r.TargetCalories < 800 || *r.TargetCalories > 10000) {
		return fmt.Errorf("target_calories must be between 800 and 10000")
	}

	macrosSet := 0
	for _, p := range []*int{r.CarbsPercent, r.FatsPercent, r.ProteinPercent} {
		if p != nil {
			macrosSet++
		}
	}
	if macrosSet != 0 && macrosSet != 3 {
		return fmt.Errorf("carbs_percent, fats_percent and protein_percent must be provided together")
	}
	if macrosSet == 3 {
		if *r.CarbsPercent < 0 || *r.FatsPercent < 0 || *r.ProteinPercent < 0 {
			return fmt.Errorf("macro percentages must not be negative")
		}
		if *r.CarbsPercent+*r.FatsPercent+*r.ProteinPercent != 100 {
			return fmt.Errorf("macro percentages must sum to 100")
		}
	}

	return nil
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
