package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-learnhub/internal/auth"
	"go-learnhub/internal/model"
	"go-learnhub/internal/repository"
	"go-learnhub/pkg/apierror"
)

func newTestAuthService() (*AuthService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	hasher := auth.NewHasher(4)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(users, hasher, tokens), users
}

func aliceSignup() model.SignupRequest {
	return model.SignupRequest{
		Firstname: "Alice",
		Lastname:  "Smith",
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "longenough1",
	}
}

func TestSignupCreatesStudentByDefault(t *testing.T) {
	svc, users := newTestAuthService()

	profile, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, model.RoleStudent, profile.Role)
	assert.Equal(t, "default.jpg", profile.ProfileImage)
	assert.NotEmpty(t, profile.ID)

	stored, err := users.FindByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "longenough1", stored.PasswordHash)
}

func TestSignupNeverGrantsElevatedRole(t *testing.T) {
	svc, users := newTestAuthService()

	// No signup input can produce anything but a student; elevation
	// only happens through the admin role update.
	profile, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)
	require.Equal(t, model.RoleStudent, profile.Role)

	stored, err := users.FindByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, stored.Role)
}

func TestSignupAndLoginAgreeOnWhitespacePassword(t *testing.T) {
	svc, _ := newTestAuthService()

	req := aliceSignup()
	req.Password = "  padded pass  "
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	// The credential is the exact byte string the user submitted.
	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "  padded pass  "})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "padded pass"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestChangePasswordPreservesWhitespace(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, model.ChangePasswordRequest{
		CurrentPassword: "longenough1",
		NewPassword:     "trailing space1 ",
		ConfirmPassword: "trailing space1 ",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "trailing space1"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "trailing space1 "})
	require.NoError(t, err)
}

func TestSignupValidationCollectsFields(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), model.SignupRequest{
		Firstname: "",
		Lastname:  "Sm1th",
		Username:  "a!",
		Email:     "not-an-email",
		Password:  "short",
	})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)

	fields := map[string]bool{}
	for _, f := range apiErr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"firstname", "lastname", "username", "email", "password"} {
		assert.True(t, fields[want], "missing field error for %s", want)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	req := aliceSignup()
	req.Email = "other@x.com"
	_, err = svc.Signup(context.Background(), req)
	require.ErrorIs(t, err, model.ErrDuplicateUsername)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	req := aliceSignup()
	req.Username = "alice2"
	_, err = svc.Signup(context.Background(), req)
	require.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestSignupUsernameConflictTakesPrecedence(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	// Both fields collide; the username conflict is the one reported.
	_, err = svc.Signup(context.Background(), aliceSignup())
	require.ErrorIs(t, err, model.ErrDuplicateUsername)
}

// raceyStore reports no conflicts at check time but fails the insert,
// modeling a concurrent signup that slipped between check and write.
type raceyStore struct {
	UserStore
}

func (raceyStore) ExistsByUsername(context.Context, string) (bool, error) { return false, nil }
func (raceyStore) ExistsByEmail(context.Context, string) (bool, error)   { return false, nil }
func (raceyStore) Create(context.Context, model.User) error {
	return model.ErrDuplicateUsername
}

func TestSignupLateConflictSurfacesAsDuplicate(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(raceyStore{UserStore: users}, auth.NewHasher(4), auth.NewTokenManager("test-secret", time.Hour))

	_, err := svc.Signup(context.Background(), aliceSignup())
	require.ErrorIs(t, err, model.ErrDuplicateUsername)
}

func TestLoginGenericInvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	// Wrong password and unknown user must be indistinguishable.
	_, wrongPassErr := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "wrong"})
	_, unknownErr := svc.Login(context.Background(), model.LoginRequest{Username: "nobody", Password: "whatever"})

	require.ErrorIs(t, wrongPassErr, model.ErrInvalidCredentials)
	require.ErrorIs(t, unknownErr, model.ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr, unknownErr)
}

func TestLoginRequiresUsernameOrEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), model.LoginRequest{Password: "longenough1"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestLoginByUsernameAndByEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	byUsername, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "longenough1"})
	require.NoError(t, err)
	byEmail, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, byUsername.User.ID)
	assert.Equal(t, created.ID, byEmail.User.ID)
	assert.Equal(t, "Bearer", byUsername.TokenType)
	assert.NotEmpty(t, byUsername.Token)
	assert.Equal(t, int64(3600), byUsername.ExpiresIn)
}

func TestLoginTokenCarriesIdentityClaims(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(users, auth.NewHasher(4), tokens)

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "longenough1"})
	require.NoError(t, err)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, model.ChangePasswordRequest{
		CurrentPassword: "wrong-current",
		NewPassword:     "brandnewpass1",
		ConfirmPassword: "brandnewpass1",
	})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.HTTPStatus)
}

func TestChangePasswordConfirmMustMatch(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, model.ChangePasswordRequest{
		CurrentPassword: "longenough1",
		NewPassword:     "brandnewpass1",
		ConfirmPassword: "brandnewpass2",
	})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
}

func TestChangePasswordReplacesHash(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.ID, model.ChangePasswordRequest{
		CurrentPassword: "longenough1",
		NewPassword:     "brandnewpass1",
		ConfirmPassword: "brandnewpass1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "longenough1"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "alice", Password: "brandnewpass1"})
	require.NoError(t, err)
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	_, err = svc.UpdateUserRole(context.Background(), created.ID, "czar")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)

	updated, err := svc.UpdateUserRole(context.Background(), created.ID, model.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleInstructor, updated.Role)
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	svc, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	err = svc.DeleteUser(context.Background(), created.ID, created.ID)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)

	require.NoError(t, svc.DeleteUser(context.Background(), created.ID, "someone-else"))
	_, err = svc.GetUser(context.Background(), created.ID)
	require.ErrorIs(t, err, model.ErrUserNotFound)
}
