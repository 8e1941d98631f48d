// Package memory is the in-memory storage backend. It backs local
// development and tests, and the server falls back to it when no
// database is configured.
package memory

import (
	"github.com/mealvoice/server/internal/storage"
)

// MemoryStorage aggregates the in-memory per-concern stores.
type MemoryStorage struct {
	userProfiles *userProfilesStorage
	mealLog      *mealLogStorage
}

func New() *MemoryStorage {
	return &MemoryStorage{
		userProfiles: newUserProfilesStorage(),
		mealLog:      newMealLogStorage(),
	}
}

func (m *MemoryStorage) GetUserProfilesStorage() storage.UserProfilesStorage {
	return m.userProfiles
}

func (m *MemoryStorage) GetMealLogStorage() storage.MealLogStorage {
	return m.mealLog
}

func (m *MemoryStorage) Close() error {
	// no-op for memory
	return nil
}
