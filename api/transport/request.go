package transport

import (
	"net/mail"
	"strings"

	"github.com/paresh-enterprises/backend/domain"
)

const minPasswordLength = 8

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	if !validEmail(r.Email) {
		return domain.NewError(domain.ErrCodeInvalid, "a valid email address is required")
	}
	if len(r.Password) < minPasswordLength {
		return domain.NewError(domain.ErrCodeInvalid, "password must be at least 8 characters")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "full_name is required")
	}
	if strings.TrimSpace(r.Username) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "username is required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if !validEmail(r.Email) || r.Password == "" {
		return domain.NewError(domain.ErrCodeInvalid, "email and password are required")
	}
	return nil
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

func (r *ContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "name is required")
	}
	if !validEmail(r.Email) {
		return domain.NewError(domain.ErrCodeInvalid, "a valid email address is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "message is required")
	}
	return nil
}

func validEmail(address string) bool {
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
