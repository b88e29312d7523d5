package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/middleware"
	"github.com/paresh-enterprises/backend/internal/security"
	"github.com/paresh-enterprises/backend/repository"
)

type guardUserRepo struct {
	users       map[string]*domain.User
	reads       int
	failGetByID error
}

var _ repository.UserRepository = (*guardUserRepo)(nil)

func (r *guardUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.reads++
	if r.failGetByID != nil {
		return nil, r.failGetByID
	}
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *guardUserRepo) FindByEmailOrUsername(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *guardUserRepo) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (r *guardUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *guardUserRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	return nil
}

func newGuardFixture(t *testing.T) (*middleware.Guard, *guardUserRepo, *security.TokenCodec) {
	t.Helper()
	codec := security.NewTokenCodec("test-secret", "backend-test", 30*time.Minute, 7*24*time.Hour)
	repo := &guardUserRepo{users: map[string]*domain.User{
		"user-123": {ID: "user-123", Email: "a@x.com", Role: domain.RoleUser, IsActive: true},
	}}
	return middleware.NewGuard(codec, repo, nil), repo, codec
}

func runGuard(guard *middleware.Guard, authorization string) (*fasthttp.RequestCtx, *domain.User, bool) {
	var (
		admitted *domain.User
		called   bool
	)
	handler := guard.RequireUser(func(ctx *fasthttp.RequestCtx) {
		called = true
		admitted, _ = middleware.AuthenticatedUser(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/auth/me")
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	if authorization != "" {
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}
	handler(&ctx)
	return &ctx, admitted, called
}

func TestRequireUser(t *testing.T) {
	t.Run("missing credential is rejected", func(t *testing.T) {
		guard, _, _ := newGuardFixture(t)
		ctx, _, called := runGuard(guard, "")
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Equal(t, "Bearer", string(ctx.Response.Header.Peek(fasthttp.HeaderWWWAuthenticate)))
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		guard, _, _ := newGuardFixture(t)
		ctx, _, called := runGuard(guard, "Basic dXNlcjpwYXNz")
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		guard, _, _ := newGuardFixture(t)
		ctx, _, called := runGuard(guard, "Bearer not-a-token")
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("valid refresh token never authenticates", func(t *testing.T) {
		guard, _, codec := newGuardFixture(t)
		refresh, err := codec.IssueRefresh("user-123")
		require.NoError(t, err)

		ctx, _, called := runGuard(guard, "Bearer "+refresh)
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		guard, _, codec := newGuardFixture(t)
		token, err := codec.IssueAccess(&domain.User{ID: "ghost", Email: "g@x.com", Role: domain.RoleUser})
		require.NoError(t, err)

		ctx, _, called := runGuard(guard, "Bearer "+token)
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("deactivated account is rejected despite valid token", func(t *testing.T) {
		guard, repo, codec := newGuardFixture(t)
		token, err := codec.IssueAccess(repo.users["user-123"])
		require.NoError(t, err)

		repo.users["user-123"].IsActive = false

		ctx, _, called := runGuard(guard, "Bearer "+token)
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("storage outage is an internal error, not unauthorized", func(t *testing.T) {
		guard, repo, codec := newGuardFixture(t)
		token, err := codec.IssueAccess(repo.users["user-123"])
		require.NoError(t, err)

		repo.failGetByID = domain.WrapError(domain.ErrCodeUnavailable, "query user", errors.New("connection refused"))

		ctx, _, called := runGuard(guard, "Bearer "+token)
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
		assert.NotContains(t, string(ctx.Response.Body()), "connection refused")
	})

	t.Run("valid token admits and exposes the user", func(t *testing.T) {
		guard, repo, codec := newGuardFixture(t)
		token, err := codec.IssueAccess(repo.users["user-123"])
		require.NoError(t, err)

		ctx, admitted, called := runGuard(guard, "Bearer "+token)
		assert.True(t, called)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		require.NotNil(t, admitted)
		assert.Equal(t, "user-123", admitted.ID)
		assert.Equal(t, 1, repo.reads)
	})
}
