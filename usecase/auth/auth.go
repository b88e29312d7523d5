package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/security"
	"github.com/paresh-enterprises/backend/repository"
)

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Username string
	Phone    string
}

// TokenPair is the credential envelope returned by register and login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// UseCase orchestrates registration, login and token issuance.
type UseCase struct {
	users  repository.UserRepository
	hasher *security.PasswordHasher
	codec  *security.TokenCodec
	logger *zap.Logger
}

func New(users repository.UserRepository, hasher *security.PasswordHasher, codec *security.TokenCodec, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		codec:  codec,
		logger: logger,
	}
}

// Register creates a new account with default role and flags. The repository
// unique indexes are the real uniqueness guarantee; the pre-check only gives
// a friendlier fast path, and a duplicate-key insert still maps to
// ErrUserAlreadyExists under concurrent registration.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	existing, err := uc.users.FindByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{
		Email:         in.Email,
		Username:      in.Username,
		FullName:      in.FullName,
		PasswordHash:  hash,
		Phone:         in.Phone,
		Role:          domain.RoleUser,
		IsActive:      true,
		EmailVerified: false,
		Address:       map[string]string{},
		Preferences:   map[string]string{},
	}

	created, err := uc.users.Insert(ctx, user)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", created.ID), zap.String("email", created.Email))
	return created, nil
}

// Authenticate verifies credentials against the stored hash. Unknown email,
// wrong password and deactivated account all fail with the same
// ErrInvalidCredentials so login cannot be used to enumerate accounts.
func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	// Best effort: a stale last_login_at is not a correctness issue, so a
	// failed write must not fail the login.
	now := time.Now().UTC()
	if err := uc.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, nil
}

// IssueTokenPair mints the access/refresh pair for an authenticated user.
// Pure function of the token codec; storage is not touched.
func (uc *UseCase) IssueTokenPair(user *domain.User) (*TokenPair, error) {
	access, err := uc.codec.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := uc.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(uc.codec.AccessTTL().Seconds()),
	}, nil
}

// EnsureAdmin idempotently seeds the configured administrator account at
// boot. A concurrent boot losing the insert race is not an error.
func (uc *UseCase) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	if email == "" || password == "" {
		return nil
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "hash admin password", err)
	}

	admin := &domain.User{
		Email:         email,
		Username:      "admin",
		FullName:      fullName,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		Address:       map[string]string{},
		Preferences:   map[string]string{},
	}

	if _, err := uc.users.Insert(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	uc.logger.Info("admin user created", zap.String("email", email))
	return nil
}
