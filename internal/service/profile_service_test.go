package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-learnhub/internal/auth"
	"go-learnhub/internal/model"
	"go-learnhub/internal/repository"
	"go-learnhub/internal/storage"
	"go-learnhub/pkg/apierror"
)

func newTestProfileService(t *testing.T) (*ProfileService, *repository.MemoryUserRepository, string) {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	avatars, err := storage.New(t.TempDir())
	require.NoError(t, err)

	svc := NewProfileService(users, avatars, 512)

	authSvc := NewAuthService(users, auth.NewHasher(4), auth.NewTokenManager("test-secret", time.Hour))
	profile, err := authSvc.Signup(context.Background(), aliceSignup())
	require.NoError(t, err)

	return svc, users, profile.ID
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestProfileUpdateMergesOnlyProvidedFields(t *testing.T) {
	svc, users, userID := newTestProfileService(t)

	before, err := users.FindByID(context.Background(), userID)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{
		Bio:   strPtr("Teaches distributed systems"),
		Title: strPtr("Senior Instructor"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Teaches distributed systems", updated.Bio)
	assert.Equal(t, "Senior Instructor", updated.Title)
	// Untouched fields keep their stored values.
	assert.Equal(t, before.Firstname, updated.Firstname)
	assert.Equal(t, before.Lastname, updated.Lastname)
	assert.Equal(t, before.Experience, updated.Experience)
}

func TestProfileUpdateSocialLinksAndExperience(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	updated, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{
		Experience:  intPtr(7),
		SocialLinks: &model.SocialLinks{GitHub: "https://github.com/alice"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, updated.Experience)
	assert.Equal(t, "https://github.com/alice", updated.SocialLinks.GitHub)
}

func TestProfileUpdateValidation(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	_, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{
		Bio:        strPtr(strings.Repeat("x", 501)),
		Experience: intPtr(200),
	}, nil)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	assert.Len(t, apiErr.Fields, 2)
}

func TestProfileUpdateUnknownUser(t *testing.T) {
	svc, _, _ := newTestProfileService(t)

	_, err := svc.Update(context.Background(), "no-such-id", model.UpdateProfileRequest{Bio: strPtr("hi")}, nil)
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestProfileProjectionNeverCarriesHash(t *testing.T) {
	svc, users, userID := newTestProfileService(t)

	stored, err := users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)

	profile, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)

	// The projection type has no hash field; make sure the serialized
	// form does not smuggle one in either.
	assert.NotContains(t, encodeJSON(t, profile), stored.PasswordHash)
}

func TestAvatarUploadResizesAndStoresJPEG(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	var buf bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	require.NoError(t, png.Encode(&buf, src))

	updated, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, userID+".jpg", updated.ProfileImage)

	file, err := svc.OpenAvatar(context.Background(), userID)
	require.NoError(t, err)
	defer file.Close()

	decoded, err := jpeg.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 512, decoded.Bounds().Dx())
	assert.Equal(t, 384, decoded.Bounds().Dy())
}

func TestAvatarUploadSkipsUpscaling(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 80))))

	_, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{}, &buf)
	require.NoError(t, err)

	file, err := svc.OpenAvatar(context.Background(), userID)
	require.NoError(t, err)
	defer file.Close()

	decoded, err := jpeg.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
}

func TestAvatarUploadHandlesExtremeAspectRatio(t *testing.T) {
	// A 1x2000 strip scales its short side below one pixel; the
	// pipeline must clamp it rather than hand jpeg.Encode an empty image.
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 2000))))

	data, err := processAvatar(&buf, 512)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Bounds().Dx())
	assert.Equal(t, 512, decoded.Bounds().Dy())
}

func TestAvatarUploadRejectsGarbage(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	_, err := svc.Update(context.Background(), userID, model.UpdateProfileRequest{},
		strings.NewReader("definitely not an image"))

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestOpenAvatarWithoutUpload(t *testing.T) {
	svc, _, userID := newTestProfileService(t)

	_, err := svc.OpenAvatar(context.Background(), userID)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.HTTPStatus)
}
