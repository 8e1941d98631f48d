package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealvoice/server/internal/storage"
)

type userProfilesStorage struct {
	pool *pgxpool.Pool
}

func newUserProfilesStorage(pool *pgxpool.Pool) *userProfilesStorage {
	return &userProfilesStorage{pool: pool}
}

const userProfileColumns = `
	owner_user_id, units_preference, sex, age, height_cm, weight_kg,
	activity_level, dietary_preferences, allergies, goal, target_calories,
	carbs_percent, fats_percent, protein_percent, onboarding_completed,
	created_at, updated_at
`

func (s *userProfilesStorage) Get(ctx context.Context, ownerUserID string) (*storage.UserProfile, error) {
	query := `
		SELECT ` + userProfileColumns + `
		FROM user_profiles
		WHERE owner_user_id = $1
	`

	profile, err := scanUserProfile(s.pool.QueryRow(ctx, query, ownerUserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return profile, nil
}

func (s *userProfilesStorage) Upsert(ctx context.Context, ownerUserID string, upsert storage.UserProfileUpsert) (*storage.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (
			owner_user_id, units_preference, sex, age, height_cm, weight_kg,
			activity_level, dietary_preferences, allergies, goal, target_calories,
			carbs_percent, fats_percent, protein_percent, onboarding_completed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (owner_user_id)
		DO UPDATE SET
			units_preference = EXCLUDED.units_preference,
			sex = EXCLUDED.sex,
			age = EXCLUDED.age,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			dietary_preferences = EXCLUDED.dietary_preferences,
			allergies = EXCLUDED.allergies,
			goal = EXCLUDED.goal,
			target_calories = EXCLUDED.target_calories,
			carbs_percent = EXCLUDED.carbs_percent,
			fats_percent = EXCLUDED.fats_percent,
			protein_percent = EXCLUDED.protein_percent,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = now()
		RETURNING ` + userProfileColumns

	profile, err := scanUserProfile(s.pool.QueryRow(
		ctx,
		query,
		ownerUserID,
		upsert.UnitsPreference,
		upsert.Sex,
		upsert.Age,
		upsert.HeightCm,
		upsert.WeightKg,
		upsert.ActivityLevel,
		upsert.DietaryPreferences,
		upsert.Allergies,
		upsert.Goal,
		upsert.TargetCalories,
		upsert.CarbsPercent,
		upsert.FatsPercent,
		upsert.ProteinPercent,
		upsert.OnboardingCompleted,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}

	return profile, nil
}

func scanUserProfile(row pgx.Row) (*storage.UserProfile, error) {
	var profile storage.UserProfile
	err := row.Scan(
		&profile.OwnerUserID,
		&profile.UnitsPreference,
		&profile.Sex,
		&profile.Age,
		&profile.HeightCm,
		&profile.WeightKg,
		&profile.ActivityLevel,
		&profile.DietaryPreferences,
		&profile.Allergies,
		&profile.Goal,
		&profile.TargetCalories,
		&profile.CarbsPercent,
		&profile.FatsPercent,
		&profile.ProteinPercent,
		&profile.OnboardingCompleted,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
