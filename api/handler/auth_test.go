package handler_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/paresh-enterprises/backend/api/handler"
	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/middleware"
	"github.com/paresh-enterprises/backend/internal/security"
	"github.com/paresh-enterprises/backend/repository"
	authUC "github.com/paresh-enterprises/backend/usecase/auth"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*domain.User{}}
}

var _ repository.UserRepository = (*memoryUserRepo)(nil)

func (r *memoryUserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	record := *user
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	r.users[record.ID] = &record
	copied := record
	return &copied, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
		return nil
	}
	return domain.ErrUserNotFound
}

func (r *memoryUserRepo) deactivate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsActive = false
	}
}

type fixture struct {
	repo    *memoryUserRepo
	codec   *security.TokenCodec
	handler *handler.AuthHandler
	guard   *middleware.Guard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemoryUserRepo()
	hasher := security.NewPasswordHasher(4)
	codec := security.NewTokenCodec("test-secret", "backend-test", 30*time.Minute, 7*24*time.Hour)
	uc := authUC.New(repo, hasher, codec, nil)
	return &fixture{
		repo:    repo,
		codec:   codec,
		handler: handler.NewAuthHandler(uc, nil, nil),
		guard:   middleware.NewGuard(codec, repo, nil),
	}
}

func doPost(h fasthttp.RequestHandler, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	h(&ctx)
	return &ctx
}

func doGet(h fasthttp.RequestHandler, uri, bearer string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	if bearer != "" {
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+bearer)
	}
	h(&ctx)
	return &ctx
}

const registerBody = `{"email":"a@x.com","password":"longenough1","full_name":"A B","username":"ab"}`

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account and returns token envelope", func(t *testing.T) {
		f := newFixture(t)
		ctx := doPost(f.handler.Register, "/api/auth/register", registerBody)

		require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

		body := string(ctx.Response.Body())
		assert.NotContains(t, body, "password_hash")
		assert.NotContains(t, body, "longenough1")

		var resp struct {
			AccessToken  string            `json:"access_token"`
			RefreshToken string            `json:"refresh_token"`
			TokenType    string            `json:"token_type"`
			ExpiresIn    int               `json:"expires_in"`
			User         domain.PublicUser `json:"user"`
		}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, 1800, resp.ExpiresIn)
		assert.Equal(t, "a@x.com", resp.User.Email)
		assert.True(t, resp.User.IsActive)
		assert.False(t, resp.User.EmailVerified)
	})

	t.Run("duplicate email conflicts even with different username", func(t *testing.T) {
		f := newFixture(t)
		doPost(f.handler.Register, "/api/auth/register", registerBody)

		ctx := doPost(f.handler.Register, "/api/auth/register",
			`{"email":"a@x.com","password":"longenough1","full_name":"Other","username":"other"}`)
		assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	})

	t.Run("short password is a validation error", func(t *testing.T) {
		f := newFixture(t)
		ctx := doPost(f.handler.Register, "/api/auth/register",
			`{"email":"a@x.com","password":"short","full_name":"A B","username":"ab"}`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("malformed body is a validation error", func(t *testing.T) {
		f := newFixture(t)
		ctx := doPost(f.handler.Register, "/api/auth/register", `{"email":`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("valid credentials return token envelope", func(t *testing.T) {
		f := newFixture(t)
		doPost(f.handler.Register, "/api/auth/register", registerBody)

		ctx := doPost(f.handler.Login, "/api/auth/login", `{"email":"a@x.com","password":"longenough1"}`)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "access_token")
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		f := newFixture(t)
		doPost(f.handler.Register, "/api/auth/register", registerBody)

		wrong := doPost(f.handler.Login, "/api/auth/login", `{"email":"a@x.com","password":"wrongpassword"}`)
		unknown := doPost(f.handler.Login, "/api/auth/login", `{"email":"nobody@x.com","password":"longenough1"}`)

		assert.Equal(t, fasthttp.StatusUnauthorized, wrong.Response.StatusCode())
		assert.Equal(t, fasthttp.StatusUnauthorized, unknown.Response.StatusCode())
		assert.Equal(t, "Bearer", string(wrong.Response.Header.Peek(fasthttp.HeaderWWWAuthenticate)))

		assert.Contains(t, string(wrong.Response.Body()), "Invalid email or password")
		assert.Equal(t, string(wrong.Response.Body()), string(unknown.Response.Body()))
	})
}

func TestProtectedEndpoints(t *testing.T) {
	registerAndToken := func(t *testing.T, f *fixture) (string, string) {
		t.Helper()
		ctx := doPost(f.handler.Register, "/api/auth/register", registerBody)
		require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

		var resp struct {
			AccessToken string `json:"access_token"`
			User        struct {
				ID string `json:"id"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		return resp.AccessToken, resp.User.ID
	}

	t.Run("me round-trips the registered subject", func(t *testing.T) {
		f := newFixture(t)
		token, userID := registerAndToken(t, f)

		ctx := doGet(f.guard.RequireUser(f.handler.Me), "/api/auth/me", token)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

		var user domain.PublicUser
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &user))
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NotContains(t, strings.ToLower(string(ctx.Response.Body())), "password")
	})

	t.Run("deactivation invalidates an unexpired token", func(t *testing.T) {
		f := newFixture(t)
		token, userID := registerAndToken(t, f)

		f.repo.deactivate(userID)

		ctx := doGet(f.guard.RequireUser(f.handler.Me), "/api/auth/me", token)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("logout acknowledges without revoking", func(t *testing.T) {
		f := newFixture(t)
		token, _ := registerAndToken(t, f)

		var ctx fasthttp.RequestCtx
		ctx.Request.SetRequestURI("/api/auth/logout")
		ctx.Request.Header.SetMethod(fasthttp.MethodPost)
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
		f.guard.RequireUser(f.handler.Logout)(&ctx)

		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "Successfully logged out")

		// Token stays valid until expiry.
		again := doGet(f.guard.RequireUser(f.handler.Me), "/api/auth/me", token)
		assert.Equal(t, fasthttp.StatusOK, again.Response.StatusCode())
	})
}
