package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/api/transport"
	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/middleware"
	"github.com/paresh-enterprises/backend/pkg/httpcontext"
	authUC "github.com/paresh-enterprises/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondTokens(ctx, http.StatusCreated, user)
}

// @Summary Authenticate with email and password
// @Tags auth
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Authenticate(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondTokens(ctx, http.StatusOK, user)
}

// @Summary Current user profile
// @Tags auth
// @Router /api/auth/profile [get]
func (h *AuthHandler) Profile(ctx *fasthttp.RequestCtx) {
	user, ok := middleware.AuthenticatedUser(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthenticated)
		return
	}
	h.respondJSON(ctx, http.StatusOK, user.Public())
}

// @Summary Shortcut for the current user
// @Tags auth
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	h.Profile(ctx)
}

// @Summary Logout acknowledgement
// @Tags auth
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	user, ok := middleware.AuthenticatedUser(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthenticated)
		return
	}

	// Tokens are stateless and stay valid until expiry; logout is a
	// client-side convention acknowledged here.
	h.logger.Info("user logged out", zap.String("user_id", user.ID))
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{
		Message: "Successfully logged out",
		Success: true,
	})
}

func (h *AuthHandler) respondTokens(ctx *fasthttp.RequestCtx, status int, user *domain.User) {
	pair, err := h.uc.IssueTokenPair(user)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, status, transport.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         user.Public(),
	})
}
