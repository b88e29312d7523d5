package domain

import "time"

// Role classifies what a user account is allowed to do.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// User represents a registered identity. PasswordHash never leaves the
// process; external responses go through PublicUser instead.
type User struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	Username       string            `json:"username"`
	FullName       string            `json:"full_name"`
	PasswordHash   string            `json:"-"`
	Role           Role              `json:"role"`
	IsActive       bool              `json:"is_active"`
	EmailVerified  bool              `json:"email_verified"`
	Phone          string            `json:"phone,omitempty"`
	Address        map[string]string `json:"address,omitempty"`
	Preferences    map[string]string `json:"preferences,omitempty"`
	ProfilePicture string            `json:"profile_picture,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	LastLoginAt    *time.Time        `json:"last_login_at,omitempty"`
}

// PublicUser is the externally visible projection of a user record.
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Username      string     `json:"username"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	Phone         string     `json:"phone,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// Public returns the projection embedded in profile and token responses.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Username:      u.Username,
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		Phone:         u.Phone,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}
