// Package storage defines the persistence interfaces and row types shared
// by the in-memory and Postgres backends.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserProfile is the persisted profile record. Biometrics are canonical
// metric values; imperial display conversion happens client-side.
type UserProfile struct {
	OwnerUserID         string
	UnitsPreference     string // "metric" or "imperial"
	Sex                 string
	Age                 int
	HeightCm            int
	WeightKg            float64
	ActivityLevel       string
	DietaryPreferences  []string // nil when not set
	Allergies           []string // nil when not set
	Goal                string
	TargetCalories      int
	CarbsPercent        int
	FatsPercent         int
	ProteinPercent      int
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UserProfileUpsert carries the writable profile fields.
type UserProfileUpsert struct {
	UnitsPreference     string
	Sex                 string
	Age                 int
	HeightCm            int
	WeightKg            float64
	ActivityLevel       string
	DietaryPreferences  []string
	Allergies           []string
	Goal                string
	TargetCalories      int
	CarbsPercent        int
	FatsPercent         int
	ProteinPercent      int
	OnboardingCompleted bool
}

// UserProfilesStorage persists one profile per owner user.
type UserProfilesStorage interface {
	// Get returns the profile or (nil, nil) when none is stored.
	Get(ctx context.Context, ownerUserID string) (*UserProfile, error)

	// Upsert creates or replaces the owner's profile.
	Upsert(ctx context.Context, ownerUserID string, upsert UserProfileUpsert) (*UserProfile, error)
}

// LoggedMeal is one meal log entry. A meal starts in the loading state
// and is completed asynchronously: on success Nutrition holds the
// encoded estimation response, on pipeline failure FailureMessage is set
// instead.
type LoggedMeal struct {
	ID             uuid.UUID
	OwnerUserID    string
	LoggedAt       time.Time
	MealDate       string // YYYY-MM-DD, derived from LoggedAt in UTC
	Transcription  *string
	Nutrition      []byte // JSON estimation response, nil while loading or failed
	FailureMessage *string
	IsLoading      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MealResultUpdate is the write-back applied when a meal's pipeline
// finishes. Exactly one of Nutrition or FailureMessage is set.
type MealResultUpdate struct {
	Transcription  *string
	Nutrition      []byte
	FailureMessage *string
}

// MealLogStorage persists logged meals.
type MealLogStorage interface {
	// InsertMeal stores a new meal entry.
	InsertMeal(ctx context.Context, meal *LoggedMeal) error

	// GetMeal returns the owner's meal or (nil, nil) when absent.
	GetMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (*LoggedMeal, error)

	// CompleteMeal applies the pipeline result and clears the loading
	// flag. It reports false when the meal no longer exists, so a
	// deletion that raced the pipeline stays a deletion.
	CompleteMeal(ctx context.Context, id uuid.UUID, update MealResultUpdate) (bool, error)

	// DeleteMeal removes the owner's meal, reporting whether it existed.
	DeleteMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (bool, error)

	// ListMealsByDate returns the owner's meals for one date, ordered by
	// LoggedAt ascending.
	ListMealsByDate(ctx context.Context, ownerUserID, date string) ([]LoggedMeal, error)

	// ListMealsInRange returns meals with MealDate in [from, to].
	ListMealsInRange(ctx context.Context, ownerUserID, from, to string) ([]LoggedMeal, error)
}

// Storage is the backend aggregate handed to the HTTP server.
type Storage interface {
	GetUserProfilesStorage() UserProfilesStorage
	GetMealLogStorage() MealLogStorage
	Close() error
}
