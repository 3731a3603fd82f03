package model

// SignupRequest carries everything the signup endpoint accepts. Profile
// fields beyond the credentials are optional. There is deliberately no
// role field: every signup is a student, and elevation happens only
// through the admin role route.
type SignupRequest struct {
	Firstname   string       `json:"firstname"`
	Lastname    string       `json:"lastname"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	Bio         string       `json:"bio,omitempty"`
	Title       string       `json:"title,omitempty"`
	Experience  *int         `json:"experience,omitempty"`
	SocialLinks *SocialLinks `json:"social_links,omitempty"`
}

// LoginRequest accepts either a username or an email as the lookup key.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// UpdateProfileRequest is an explicit allow-list of mutable profile
// fields. Pointer fields distinguish "absent" from "set to zero".
type UpdateProfileRequest struct {
	Firstname   *string      `json:"firstname,omitempty"`
	Lastname    *string      `json:"lastname,omitempty"`
	Bio         *string      `json:"bio,omitempty"`
	Title       *string      `json:"title,omitempty"`
	Experience  *int         `json:"experience,omitempty"`
	SocialLinks *SocialLinks `json:"social_links,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}
