package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-learnhub/internal/model"
)

// MemoryUserRepository is an in-memory credential store used by tests
// and local tooling. It mirrors the SQL store's behavior: uniqueness is
// case-insensitive and enforced at write time, so a check-then-insert
// race still surfaces as a duplicate error.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) FindByUsernameOrEmail(_ context.Context, username string, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if (username != "" && strings.ToLower(user.Username) == username) ||
			(email != "" && strings.ToLower(user.Email) == email) {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usernameTakenLocked(username), nil
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTakenLocked(email), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTakenLocked(u.Username) {
		return model.ErrDuplicateUsername
	}
	if r.emailTakenLocked(u.Email) {
		return model.ErrDuplicateEmail
	}

	r.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[u.ID]
	if !exists {
		return model.ErrUserNotFound
	}

	stored.Firstname = u.Firstname
	stored.Lastname = u.Lastname
	stored.Bio = u.Bio
	stored.Title = u.Title
	stored.Experience = u.Experience
	stored.SocialLinks = u.SocialLinks
	stored.ProfileImage = u.ProfileImage
	stored.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = stored
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[userID]
	if !exists {
		return model.ErrUserNotFound
	}

	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now().UTC()
	r.users[userID] = stored
	return nil
}

func (r *MemoryUserRepository) UpdateRole(_ context.Context, userID string, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[userID]
	if !exists {
		return model.ErrUserNotFound
	}

	stored.Role = role
	stored.UpdatedAt = time.Now().UTC()
	r.users[userID] = stored
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[id]; !exists {
		return model.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *MemoryUserRepository) usernameTakenLocked(username string) bool {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, user := range r.users {
		if strings.ToLower(user.Username) == username {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepository) emailTakenLocked(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.users {
		if strings.ToLower(user.Email) == email {
			return true
		}
	}
	return false
}
