package service

import (
	"context"
	"io"
	"net/http"
	"os"

	"go-learnhub/internal/model"
	"go-learnhub/internal/storage"
	"go-learnhub/pkg/apierror"
)

type ProfileService struct {
	users   UserStore
	avatars *storage.Storage
	maxDim  int
}

func NewProfileService(users UserStore, avatars *storage.Storage, avatarMaxDim int) *ProfileService {
	if avatarMaxDim <= 0 {
		avatarMaxDim = 512
	}
	return &ProfileService{users: users, avatars: avatars, maxDim: avatarMaxDim}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Projection(), nil
}

// Update merges the allow-listed profile fields into the stored record;
// only fields present in the request change. A non-nil image replaces
// the avatar.
func (s *ProfileService) Update(ctx context.Context, userID string, req model.UpdateProfileRequest, image io.Reader) (model.Profile, error) {
	if fields := validateProfileUpdate(req); len(fields) > 0 {
		return model.Profile{}, apierror.NewValidation(fields)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	if req.Firstname != nil {
		user.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		user.Lastname = *req.Lastname
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Title != nil {
		user.Title = *req.Title
	}
	if req.Experience != nil {
		user.Experience = *req.Experience
	}
	if req.SocialLinks != nil {
		user.SocialLinks = *req.SocialLinks
	}

	if image != nil {
		data, err := processAvatar(image, s.maxDim)
		if err != nil {
			return model.Profile{}, apierror.New("BAD_REQUEST", "unsupported or corrupt avatar image", "", http.StatusBadRequest)
		}

		name := user.ID + ".jpg"
		if err := s.avatars.WriteFile(name, data); err != nil {
			return model.Profile{}, err
		}
		user.ProfileImage = name
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return model.Profile{}, err
	}

	return user.Projection(), nil
}

// OpenAvatar returns the stored avatar file for a user; callers close it.
func (s *ProfileService) OpenAvatar(ctx context.Context, userID string) (*os.File, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ProfileImage == "" || user.ProfileImage == defaultProfileImage {
		return nil, apierror.New("NOT_FOUND", "no avatar uploaded", "", http.StatusNotFound)
	}

	file, err := s.avatars.Open(user.ProfileImage)
	if os.IsNotExist(err) {
		return nil, apierror.New("NOT_FOUND", "avatar file missing", "", http.StatusNotFound)
	}
	return file, err
}
