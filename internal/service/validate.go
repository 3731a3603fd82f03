package service

import (
	"net/mail"
	"regexp"
	"strings"

	"go-learnhub/internal/model"
	"go-learnhub/pkg/apierror"
)

const (
	minPasswordLength = 8
	maxBioLength      = 500
	maxTitleLength    = 100
	maxExperience     = 100
)

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z \-]*$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

func validateSignup(req model.SignupRequest) []apierror.FieldError {
	var fields []apierror.FieldError

	fields = appendNameErrors(fields, "firstname", req.Firstname)
	fields = appendNameErrors(fields, "lastname", req.Lastname)

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		fields = append(fields, apierror.FieldError{Field: "username", Message: "username is required"})
	case !usernameRe.MatchString(username):
		fields = append(fields, apierror.FieldError{Field: "username", Message: "username must be alphanumeric"})
	case len(username) < 3 || len(username) > 30:
		fields = append(fields, apierror.FieldError{Field: "username", Message: "username must be between 3 and 30 characters"})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields = append(fields, apierror.FieldError{Field: "email", Message: "email is required"})
	} else if !validEmail(email) {
		fields = append(fields, apierror.FieldError{Field: "email", Message: "invalid email address"})
	}

	fields = append(fields, passwordErrors("password", req.Password)...)

	fields = append(fields, optionalProfileErrors(req.Bio, req.Title, req.Experience)...)

	return fields
}

func validateProfileUpdate(req model.UpdateProfileRequest) []apierror.FieldError {
	var fields []apierror.FieldError

	if req.Firstname != nil {
		fields = appendNameErrors(fields, "firstname", *req.Firstname)
	}
	if req.Lastname != nil {
		fields = appendNameErrors(fields, "lastname", *req.Lastname)
	}

	var bio, title string
	if req.Bio != nil {
		bio = *req.Bio
	}
	if req.Title != nil {
		title = *req.Title
	}
	fields = append(fields, optionalProfileErrors(bio, title, req.Experience)...)

	return fields
}

func validatePasswordChange(req model.ChangePasswordRequest) []apierror.FieldError {
	var fields []apierror.FieldError

	if req.CurrentPassword == "" {
		fields = append(fields, apierror.FieldError{Field: "current_password", Message: "current password is required"})
	}

	fields = append(fields, passwordErrors("new_password", req.NewPassword)...)

	if req.ConfirmPassword == "" {
		fields = append(fields, apierror.FieldError{Field: "confirm_password", Message: "confirm password is required"})
	} else if req.ConfirmPassword != req.NewPassword {
		fields = append(fields, apierror.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}

	return fields
}

func appendNameErrors(fields []apierror.FieldError, field string, value string) []apierror.FieldError {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		fields = append(fields, apierror.FieldError{Field: field, Message: field + " is required"})
	case !nameRe.MatchString(value):
		fields = append(fields, apierror.FieldError{Field: field, Message: field + " must contain only letters, spaces or hyphens"})
	case len(value) < 2 || len(value) > 30:
		fields = append(fields, apierror.FieldError{Field: field, Message: field + " must be between 2 and 30 characters"})
	}
	return fields
}

// passwordErrors enforces the strength policy shared by signup and
// password change. The value is checked exactly as submitted: trimming
// would make the accepted password differ from the one later verified.
func passwordErrors(field string, password string) []apierror.FieldError {
	if password == "" {
		return []apierror.FieldError{{Field: field, Message: "password is required"}}
	}
	if len(password) < minPasswordLength {
		return []apierror.FieldError{{Field: field, Message: "password must be at least 8 characters"}}
	}
	return nil
}

func optionalProfileErrors(bio string, title string, experience *int) []apierror.FieldError {
	var fields []apierror.FieldError

	if len(bio) > maxBioLength {
		fields = append(fields, apierror.FieldError{Field: "bio", Message: "bio must be less than 500 characters"})
	}
	if len(title) > maxTitleLength {
		fields = append(fields, apierror.FieldError{Field: "title", Message: "title must be less than 100 characters"})
	}
	if experience != nil && (*experience < 0 || *experience > maxExperience) {
		fields = append(fields, apierror.FieldError{Field: "experience", Message: "experience must be between 0 and 100"})
	}

	return fields
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
