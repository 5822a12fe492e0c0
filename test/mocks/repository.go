package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
)

// MockUserRepository is an in-memory user store. The Func fields override
// the default behaviour when set.
type MockUserRepository struct {
	GetByIDFunc      func(ctx context.Context, id uint) (*models.User, error)
	UpdateStreakFunc func(ctx context.Context, user *models.User) error

	mu      sync.Mutex
	users   map[uint]models.User
	Updates int
}

// NewMockUserRepository creates a mock holding the given users.
func NewMockUserRepository(users ...models.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[uint]models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, repository.ErrNotFound)
	}
	return &u, nil
}

func (m *MockUserRepository) UpdateStreak(ctx context.Context, user *models.User) error {
	if m.UpdateStreakFunc != nil {
		return m.UpdateStreakFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("failed to update streak for user %d: %w", user.ID, repository.ErrNotFound)
	}
	m.users[user.ID] = *user
	m.Updates++
	return nil
}

// User returns the stored copy of a user.
func (m *MockUserRepository) User(id uint) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}
