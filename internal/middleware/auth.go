package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/api/transport"
	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/security"
	"github.com/paresh-enterprises/backend/repository"
)

const userValueKey = "authenticated_user"

// Guard gates protected routes. It verifies the bearer token, re-reads the
// account from storage and only then admits the request, so deactivation
// takes effect on the very next call regardless of token validity.
type Guard struct {
	codec   *security.TokenCodec
	users   repository.UserRepository
	logger  *zap.Logger
	timeout time.Duration
}

func NewGuard(codec *security.TokenCodec, users repository.UserRepository, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		codec:   codec,
		users:   users,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// RequireUser admits the request only for a valid, live account. Exactly one
// repository read per request; no caching of user lookups.
func (g *Guard) RequireUser(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tokenString := bearerToken(ctx)
		if tokenString == "" {
			g.reject(ctx, domain.ErrUnauthenticated)
			return
		}

		claims, err := g.codec.Verify(tokenString)
		if err != nil {
			g.logger.Warn("token verification failed", zap.Error(err))
			g.reject(ctx, domain.ErrInvalidToken)
			return
		}

		if claims.TokenType != security.TokenTypeAccess || claims.Subject == "" {
			g.reject(ctx, domain.ErrInvalidToken)
			return
		}

		stdCtx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()

		user, err := g.users.GetByID(stdCtx, claims.Subject)
		if err != nil {
			// A repository outage is not an authentication failure.
			if !errors.Is(err, domain.ErrUserNotFound) {
				g.fail(ctx, err)
				return
			}
			g.reject(ctx, domain.ErrUserInactive)
			return
		}
		if !user.IsActive {
			g.reject(ctx, domain.ErrUserInactive)
			return
		}

		ctx.SetUserValue(userValueKey, user)
		next(ctx)
	}
}

// AuthenticatedUser returns the account the guard admitted for this request.
func AuthenticatedUser(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := ctx.UserValue(userValueKey).(*domain.User)
	return user, ok
}

func (g *Guard) fail(ctx *fasthttp.RequestCtx, err error) {
	g.logger.Error("user lookup failed", zap.Error(err))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeInternal), "internal server error", nil))
	ctx.SetBody(body)
}

func (g *Guard) reject(ctx *fasthttp.RequestCtx, err *domain.Error) {
	ctx.Response.Header.Set(fasthttp.HeaderWWWAuthenticate, "Bearer")
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(err.Code), err.Message, nil))
	ctx.SetBody(body)
}

func bearerToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
