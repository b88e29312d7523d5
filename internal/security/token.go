package security

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/paresh-enterprises/backend/domain"
)

// Token type discriminators. Refresh tokens must never authenticate a
// request; the access guard checks this field.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the signed payload carried inside a session token.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies compact expiring session tokens. Tokens are
// opaque strings to every other component.
type TokenCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec constructs a codec bound to a symmetric secret. Signing is
// pinned to HS256; verification rejects any other method.
func NewTokenCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the issuance clock. Used by tests to mint tokens at a
// chosen instant.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// IssueAccess produces a signed access token for the user.
func (c *TokenCodec) IssueAccess(user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", domain.ErrInvalidPayload
	}
	now := c.now()
	claims := Claims{
		Email:     user.Email,
		Role:      string(user.Role),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return c.sign(claims)
}

// IssueRefresh produces a signed refresh token carrying only the subject.
func (c *TokenCodec) IssueRefresh(userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidPayload
	}
	now := c.now()
	claims := Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return c.sign(claims)
}

// Verify checks signature and expiry. Every failure mode (malformed,
// tampered, expired, wrong algorithm) collapses into domain.ErrInvalidToken
// so callers cannot be used as a decision oracle.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL exposes the configured access-token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return signed, nil
}
