package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mealvoice/server/internal/storage"
)

type userProfilesStorage struct {
	mu       sync.RWMutex
	profiles map[string]*storage.UserProfile // key: ownerUserID
}

func newUserProfilesStorage() *userProfilesStorage {
	return &userProfilesStorage{
		profiles: make(map[string]*storage.UserProfile),
	}
}

func (s *userProfilesStorage) Get(ctx context.Context, ownerUserID string) (*storage.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[ownerUserID]
	if !ok {
		return nil, nil // not found, return nil without error
	}

	copied := copyProfile(profile)
	return &copied, nil
}

func (s *userProfilesStorage) Upsert(ctx context.Context, ownerUserID string, upsert storage.UserProfileUpsert) (*storage.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	createdAt := now
	if existing, ok := s.profiles[ownerUserID]; ok {
		createdAt = existing.CreatedAt
	}

	profile := &storage.UserProfile{
		OwnerUserID:         ownerUserID,
		UnitsPreference:     upsert.UnitsPreference,
		Sex:                 upsert.Sex,
		Age:                 upsert.Age,
		HeightCm:            upsert.HeightCm,
		WeightKg:            upsert.WeightKg,
		ActivityLevel:       upsert.ActivityLevel,
		DietaryPreferences:  cloneStrings(upsert.DietaryPreferences),
		Allergies:           cloneStrings(upsert.Allergies),
		Goal:                upsert.Goal,
		TargetCalories:      upsert.TargetCalories,
		CarbsPercent:        upsert.CarbsPercent,
		FatsPercent:         upsert.FatsPercent,
		ProteinPercent:      upsert.ProteinPercent,
		OnboardingCompleted: upsert.OnboardingCompleted,
		CreatedAt:           createdAt,
		UpdatedAt:           now,
	}

	s.profiles[ownerUserID] = profile

	copied := copyProfile(profile)
	return &copied, nil
}

func copyProfile(p *storage.UserProfile) storage.UserProfile {
	copied := *p
	copied.DietaryPreferences = cloneStrings(p.DietaryPreferences)
	copied.Allergies = cloneStrings(p.Allergies)
	return copied
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
