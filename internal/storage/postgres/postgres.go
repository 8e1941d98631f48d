// Package postgres is the pgx-backed storage backend.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealvoice/server/internal/storage"
)

// PostgresStorage aggregates the Postgres per-concern stores over one
// connection pool.
type PostgresStorage struct {
	pool         *pgxpool.Pool
	userProfiles *userProfilesStorage
	mealLog      *mealLogStorage
}

func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStorage{
		pool:         pool,
		userProfiles: newUserProfilesStorage(pool),
		mealLog:      newMealLogStorage(pool),
	}, nil
}

func (p *PostgresStorage) GetUserProfilesStorage() storage.UserProfilesStorage {
	return p.userProfiles
}

func (p *PostgresStorage) GetMealLogStorage() storage.MealLogStorage {
	return p.mealLog
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
