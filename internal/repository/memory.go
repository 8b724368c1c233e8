package repository

import (
	"context"
	"sync"
	"time"

	"marketplace_auth/internal/model"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-process UserRepository. It enforces the same
// phone number uniqueness as the users table and is used by tests.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byPhone map[string]*model.User
	byID    map[string]*model.User
	creates int
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byPhone: make(map[string]*model.User),
		byID:    make(map[string]*model.User),
	}
}

func (m *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	if (user.Role == model.RoleWorker) != (user.Worker != nil) {
		return ErrProfileMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPhone[user.PhoneNumber]; ok {
		return ErrDuplicatePhone
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	stored := *user
	if user.Worker != nil {
		profile := *user.Worker
		stored.Worker = &profile
	}
	m.byPhone[stored.PhoneNumber] = &stored
	m.byID[stored.ID] = &stored
	m.creates++
	return nil
}

func (m *MemoryUserRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byPhone[phone]
	return ok, nil
}

func (m *MemoryUserRepository) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byPhone[phone]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// Creates returns how many users were written.
func (m *MemoryUserRepository) Creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

// Count returns how many users are stored with the given role.
func (m *MemoryUserRepository) Count(role model.Role) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.byID {
		if u.Role == role {
			n++
		}
	}
	return n
}
