package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-learnhub/internal/auth"
	"go-learnhub/internal/model"
	"go-learnhub/pkg/apierror"
)

const defaultProfileImage = "default.jpg"

// UserStore is the credential-store surface the auth flows need. The
// production implementation is repository.UserRepository.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateProfile(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

type AuthService struct {
	users  UserStore
	hasher *auth.Hasher
	tokens *auth.TokenManager
}

func NewAuthService(users UserStore, hasher *auth.Hasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Signup validates input, checks uniqueness of username then email, and
// persists the identity with a freshly hashed password. The store's own
// unique indexes back up the existence checks, so a conflict raced past
// them still comes back as the same duplicate error.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.Profile, error) {
	if fields := validateSignup(req); len(fields) > 0 {
		return model.Profile{}, apierror.NewValidation(fields)
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.Profile{}, err
	} else if taken {
		return model.Profile{}, model.ErrDuplicateUsername
	}

	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.Profile{}, err
	} else if taken {
		return model.Profile{}, model.ErrDuplicateEmail
	}

	// The password is hashed exactly as submitted; trimming here would
	// desync signup from login, which verifies the raw value.
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.Profile{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Firstname:    strings.TrimSpace(req.Firstname),
		Lastname:     strings.TrimSpace(req.Lastname),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		ProfileImage: defaultProfileImage,
		Bio:          req.Bio,
		Title:        req.Title,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Experience != nil {
		user.Experience = *req.Experience
	}
	if req.SocialLinks != nil {
		user.SocialLinks = *req.SocialLinks
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.Profile{}, err
	}

	return user.Projection(), nil
}

// Login accepts a username or an email as the lookup key. Unknown user
// and wrong password collapse into the same generic failure so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" && email == "" {
		return model.LoginResult{}, apierror.New("BAD_REQUEST", "username or email is required", "", http.StatusBadRequest)
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return model.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user.Projection(),
	}, nil
}

// ChangePassword requires the current password to verify before a new
// hash replaces the stored one. The new password faces the same strength
// policy as signup.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	if fields := validatePasswordChange(req); len(fields) > 0 {
		return apierror.NewValidation(fields)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return apierror.New("UNAUTHORIZED", "current password is incorrect", "", http.StatusUnauthorized)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Projection(), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Projection())
	}
	return profiles, nil
}

func (s *AuthService) UpdateUserRole(ctx context.Context, id string, role string) (model.Profile, error) {
	if !model.ValidRole(role) {
		return model.Profile{}, apierror.New("BAD_REQUEST", "role must be student, instructor, or admin", role, http.StatusBadRequest)
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return model.Profile{}, err
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes an account; admins cannot delete themselves.
func (s *AuthService) DeleteUser(ctx context.Context, id string, actorID string) error {
	if id == actorID {
		return apierror.New("BAD_REQUEST", "cannot delete your own account", "", http.StatusBadRequest)
	}
	return s.users.Delete(ctx, id)
}
