package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/clean-auth/internal/domain/entity"
	"github.com/oksasatya/clean-auth/internal/domain/repository"
)

// UserRepository keeps users in process memory. Records are copied on the way
// in and out so callers never share a pointer with the store.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Version = 1
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id }), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username }), nil
}

func (r *UserRepository) GetByUsernameOrEmail(_ context.Context, usernameOrEmail string) (*entity.User, error) {
	return r.find(func(u entity.User) bool {
		return u.Username == usernameOrEmail || strings.EqualFold(u.Email, usernameOrEmail)
	}), nil
}

func (r *UserRepository) GetByRefreshToken(_ context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.find(func(u entity.User) bool { return u.RefreshToken.Value == token }), nil
}

func (r *UserRepository) GetByConfirmationCode(_ context.Context, code string) (*entity.User, error) {
	if code == "" {
		return nil, nil
	}
	return r.find(func(u entity.User) bool { return u.EmailConfirmation.Value == code }), nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok || stored.Version != u.Version {
		return repository.ErrStaleUser
	}
	u.Version++
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) find(match func(entity.User) bool) *entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := u
			return &cp
		}
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
