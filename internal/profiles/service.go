package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mealvoice/server/internal/storage"
	"github.com/mealvoice/server/internal/units"
	"github.com/mealvoice/server/internal/userctx"
)

// ErrValidation wraps every request validation failure.
var ErrValidation = errors.New("invalid profile request")

// Service holds the profile business logic.
type Service struct {
	storage storage.UserProfilesStorage
}

func NewService(st storage.UserProfilesStorage) *Service {
	return &Service{storage: st}
}

// Get returns the stored profile, or a computed default (isDefault=true)
// before onboarding has persisted one.
func (s *Service) Get(ctx context.Context) (ProfileDTO, bool, error) {
	userID := userIDFromContext(ctx)

	profile, err := s.storage.Get(ctx, userID)
	if err != nil {
		return ProfileDTO{}, false, err
	}
	if profile == nil {
		return defaultProfile(userID), true, nil
	}

	return toDTO(*profile), false, nil
}

// Upsert validates and stores the profile. Omitted target calories and
// macro percentages are derived from the biometrics and goal.
func (s *Service) Upsert(ctx context.Context, req UpsertProfileRequest) (ProfileDTO, error) {
	userID := userIDFromContext(ctx)

	if err := req.Validate(); err != nil {
		return ProfileDTO{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sex := units.Sex(req.Sex)
	activity := units.ActivityLevel(req.ActivityLevel)
	goal := units.Goal(req.Goal)

	target := units.TargetCalories(sex, req.Age, req.HeightCm, req.WeightKg, activity, goal)
	if req.TargetCalories != nil {
		target = *req.TargetCalories
	}

	carbs, fats, protein := units.MacroPercentages(goal)
	if req.CarbsPercent != nil {
		carbs, fats, protein = *req.CarbsPercent, *req.FatsPercent, *req.ProteinPercent
	}

	stored, err := s.storage.Upsert(ctx, userID, storage.UserProfileUpsert{
		UnitsPreference:     req.UnitsPreference,
		Sex:                 req.Sex,
		Age:                 req.Age,
		HeightCm:            req.HeightCm,
		WeightKg:            req.WeightKg,
		ActivityLevel:       req.ActivityLevel,
		DietaryPreferences:  req.DietaryPreferences,
		Allergies:           req.Allergies,
		Goal:                req.Goal,
		TargetCalories:      target,
		CarbsPercent:        carbs,
		FatsPercent:         fats,
		ProteinPercent:      protein,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		return ProfileDTO{}, err
	}

	return toDTO(*stored), nil
}

// TargetCalories reports the stored daily target, falling back to the
// default profile's target before onboarding.
func (s *Service) TargetCalories(ctx context.Context) (int, error) {
	profile, _, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return profile.TargetCalories, nil
}

func defaultProfile(userID string) ProfileDTO {
	const (
		sex      = units.SexMale
		age      = 30
		heightCm = 175
		weightKg = 70.0
		activity = units.ActivityModeratelyActive
		goal     = units.GoalMaintainWeight
	)

	carbs, fats, protein := units.MacroPercentages(goal)
	now := time.Now().UTC()

	return ProfileDTO{
		UserID:              userID,
		UnitsPreference:     "metric",
		Sex:                 string(sex),
		Age:                 age,
		HeightCm:            heightCm,
		WeightKg:            weightKg,
		ActivityLevel:       string(activity),
		Goal:                string(goal),
		TargetCalories:      units.TargetCalories(sex, age, heightCm, weightKg, activity, goal),
		CarbsPercent:        carbs,
		FatsPercent:         fats,
		ProteinPercent:      protein,
		OnboardingCompleted: false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func toDTO(p storage.UserProfile) ProfileDTO {
	return ProfileDTO{
		UserID:              p.OwnerUserID,
		UnitsPreference:     p.UnitsPreference,
		Sex:                 p.Sex,
		Age:                 p.Age,
		HeightCm:            p.HeightCm,
		WeightKg:            p.WeightKg,
		ActivityLevel:       p.ActivityLevel,
		DietaryPreferences:  p.DietaryPreferences,
		Allergies:           p.Allergies,
		Goal:                p.Goal,
		TargetCalories:      p.TargetCalories,
		CarbsPercent:        p.CarbsPercent,
		FatsPercent:         p.FatsPercent,
		ProteinPercent:      p.ProteinPercent,
		OnboardingCompleted: p.OnboardingCompleted,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
