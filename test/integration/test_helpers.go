//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-learnhub/internal/auth"
	"go-learnhub/internal/config"
	"go-learnhub/internal/handler"
	"go-learnhub/internal/middleware"
	"go-learnhub/internal/model"
	"go-learnhub/internal/repository"
	"go-learnhub/internal/router"
	"go-learnhub/internal/service"
	"go-learnhub/internal/storage"
)

// newServer spins up the full router over the in-memory credential
// store, so the tests exercise the real middleware chain and handlers.
// The store is returned so tests can seed elevated accounts, which
// have no self-service registration path.
func newServer(t *testing.T, tokenTTL time.Duration) (*httptest.Server, *repository.MemoryUserRepository) {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	avatars, err := storage.New(t.TempDir())
	require.NoError(t, err)

	hasher := auth.NewHasher(4)
	tokens := auth.NewTokenManager("test-secret", tokenTTL)

	authService := service.NewAuthService(users, hasher, tokens)
	profileService := service.NewProfileService(users, avatars, 512)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
		MaxAvatarSize:    5 * 1024 * 1024,
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokens, users), router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Profile: handler.NewProfileHandler(profileService, cfg.MaxAvatarSize),
		User:    handler.NewUserHandler(authService),
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server, users
}

// seedUser provisions an account straight into the store, the way an
// operator would bootstrap admins and instructors out-of-band.
func seedUser(t *testing.T, users *repository.MemoryUserRepository, username string, email string, role string) model.User {
	t.Helper()

	hash, err := auth.NewHasher(4).Hash("longenough1")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Firstname:    "Test",
		Lastname:     "User",
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		ProfileImage: "default.jpg",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doAuthed(t *testing.T, method string, url string, payload any, token string) *http.Response {
	t.Helper()

	var reader io.Reader = bytes.NewReader(nil)
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func signupUser(t *testing.T, serverURL string, username string, email string) map[string]any {
	t.Helper()

	payload := map[string]any{
		"firstname": "Test",
		"lastname":  "User",
		"username":  username,
		"email":     email,
		"password":  "longenough1",
	}

	resp := postJSON(t, serverURL+"/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody(t, resp)
}

func loginUser(t *testing.T, serverURL string, username string, password string) (string, map[string]any) {
	t.Helper()

	resp := postJSON(t, serverURL+"/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	parsed := decodeBody(t, resp)
	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token, parsed
}
