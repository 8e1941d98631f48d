package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealvoice/server/internal/storage"
)

type mealLogStorage struct {
	pool *pgxpool.Pool
}

func newMealLogStorage(pool *pgxpool.Pool) *mealLogStorage {
	return &mealLogStorage{pool: pool}
}

const loggedMealColumns = `
	id, owner_user_id, logged_at, meal_date, transcription, nutrition,
	failure_message, is_loading, created_at, updated_at
`

func (s *mealLogStorage) InsertMeal(ctx context.Context, meal *storage.LoggedMeal) error {
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}

	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	query := `
		INSERT INTO logged_meals (
			id, owner_user_id, logged_at, meal_date, transcription, nutrition,
			failure_message, is_loading, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		meal.ID,
		meal.OwnerUserID,
		meal.LoggedAt,
		meal.MealDate,
		meal.Transcription,
		meal.Nutrition,
		meal.FailureMessage,
		meal.IsLoading,
		meal.CreatedAt,
		meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	return nil
}

func (s *mealLogStorage) GetMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.LoggedMeal, error) {
	query := `
		SELECT ` + loggedMealColumns + `
		FROM logged_meals
		WHERE owner_user_id = $1 AND id = $2
	`

	meal, err := scanLoggedMeal(s.pool.QueryRow(ctx, query, ownerUserID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	return meal, nil
}

func (s *mealLogStorage) CompleteMeal(ctx context.Context, id uuid.UUID, update storage.MealResultUpdate) (bool, error) {
	query := `
		UPDATE logged_meals
		SET transcription = COALESCE($2, transcription),
			nutrition = $3,
			failure_message = $4,
			is_loading = FALSE,
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id, update.Transcription, update.Nutrition, update.FailureMessage)
	if err != nil {
		return false, fmt.Errorf("failed to complete meal: %w", err)
	}

	// Zero rows means the meal was deleted mid-flight; the result is
	// discarded.
	return result.RowsAffected() > 0, nil
}

func (s *mealLogStorage) DeleteMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (bool, error) {
	query := `DELETE FROM logged_meals WHERE owner_user_id = $1 AND id = $2`

	result, err := s.pool.Exec(ctx, query, ownerUserID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete meal: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (s *mealLogStorage) ListMealsByDate(ctx context.Context, ownerUserID, date string) ([]storage.LoggedMeal, error) {
	return s.ListMealsInRange(ctx, ownerUserID, date, date)
}

func (s *mealLogStorage) ListMealsInRange(ctx context.Context, ownerUserID, from, to string) ([]storage.LoggedMeal, error) {
	query := `
		SELECT ` + loggedMealColumns + `
		FROM logged_meals
		WHERE owner_user_id = $1 AND meal_date >= $2 AND meal_date <= $3
		ORDER BY logged_at ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	meals := []storage.LoggedMeal{}
	for rows.Next() {
		meal, err := scanLoggedMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, *meal)
	}

	return meals, rows.Err()
}

func scanLoggedMeal(row pgx.Row) (*storage.LoggedMeal, error) {
	var meal storage.LoggedMeal
	err := row.Scan(
		&meal.ID,
		&meal.OwnerUserID,
		&meal.LoggedAt,
		&meal.MealDate,
		&meal.Transcription,
		&meal.Nutrition,
		&meal.FailureMessage,
		&meal.IsLoading,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &meal, nil
}
