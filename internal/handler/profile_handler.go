package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"go-learnhub/internal/middleware"
	"go-learnhub/internal/model"
	"go-learnhub/internal/service"
	"go-learnhub/pkg/apierror"
)

type ProfileHandler struct {
	service       *service.ProfileService
	maxAvatarSize int64
}

func NewProfileHandler(service *service.ProfileService, maxAvatarSize int64) *ProfileHandler {
	return &ProfileHandler{service: service, maxAvatarSize: maxAvatarSize}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	profile, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"user": profile})
}

// Update accepts either a JSON body or a multipart form whose "profile"
// part holds the JSON and whose optional "image" part holds an avatar.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.UpdateProfileRequest
	var image io.Reader

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(h.maxAvatarSize); err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "invalid multipart form", "", http.StatusBadRequest))
			return
		}

		if raw := r.FormValue("profile"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				writeError(w, apierror.New("BAD_REQUEST", "invalid profile JSON", "", http.StatusBadRequest))
				return
			}
		}

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			if header.Size > h.maxAvatarSize {
				writeError(w, apierror.New("BAD_REQUEST", "avatar image too large", "", http.StatusBadRequest))
				return
			}
			image = file
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
			return
		}
	}

	profile, err := h.service.Update(r.Context(), user.ID, payload, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": profile})
}

func (h *ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	file, err := h.service.OpenAvatar(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = io.Copy(w, file)
}
