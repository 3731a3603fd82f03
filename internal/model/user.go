package model

import "time"

// Roles form a closed set; anything else is rejected at the boundary.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// SocialLinks is stored as a single JSONB document on the user row.
type SocialLinks struct {
	Facebook string `json:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

func (l SocialLinks) Empty() bool {
	return l == SocialLinks{}
}

// User is the durable identity record. PasswordHash never leaves the
// repository/service layers; responses carry Profile instead.
type User struct {
	ID              string      `json:"id"`
	Firstname       string      `json:"firstname"`
	Lastname        string      `json:"lastname"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	PasswordHash    string      `json:"-"`
	Role            string      `json:"role"`
	ProfileImage    string      `json:"profile_image"`
	Bio             string      `json:"bio"`
	Title           string      `json:"title"`
	Experience      int         `json:"experience"`
	SocialLinks     SocialLinks `json:"social_links"`
	EnrolledCourses []string    `json:"-"`
	CreatedCourses  []string    `json:"-"`
	Wishlist        []string    `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (u User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// CourseCount is derived, never stored.
func (u User) CourseCount() int {
	return len(u.CreatedCourses)
}

// Profile is the safe projection of a User: no password hash, course
// membership exposed as counts only.
type Profile struct {
	ID            string      `json:"id"`
	Firstname     string      `json:"firstname"`
	Lastname      string      `json:"lastname"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	Role          string      `json:"role"`
	ProfileImage  string      `json:"profile_image"`
	Bio           string      `json:"bio,omitempty"`
	Title         string      `json:"title,omitempty"`
	Experience    int         `json:"experience,omitempty"`
	SocialLinks   SocialLinks `json:"social_links"`
	EnrolledCount int         `json:"enrolled_count"`
	CourseCount   int         `json:"course_count"`
	WishlistCount int         `json:"wishlist_count"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (u User) Projection() Profile {
	return Profile{
		ID:            u.ID,
		Firstname:     u.Firstname,
		Lastname:      u.Lastname,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		ProfileImage:  u.ProfileImage,
		Bio:           u.Bio,
		Title:         u.Title,
		Experience:    u.Experience,
		SocialLinks:   u.SocialLinks,
		EnrolledCount: len(u.EnrolledCourses),
		CourseCount:   u.CourseCount(),
		WishlistCount: len(u.Wishlist),
		CreatedAt:     u.CreatedAt,
	}
}

// AuthClaims is the decoded token payload attached to a request after
// signature and expiry checks pass.
type AuthClaims struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResult is the login response payload: token plus projection.
type LoginResult struct {
	Token     string  `json:"token"`
	TokenType string  `json:"token_type"`
	ExpiresIn int64   `json:"expires_in"`
	User      Profile `json:"user"`
}
