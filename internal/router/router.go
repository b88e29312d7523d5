package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/paresh-enterprises/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Contact *apiHandler.ContactHandler
	Health  *apiHandler.HealthHandler
}

// Middleware wraps a handler; used for the access guard on protected routes.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, guard Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public auth routes
	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/api/auth/profile", guard(handlers.Auth.Profile))
	r.GET("/api/auth/me", guard(handlers.Auth.Me))
	r.POST("/api/auth/logout", guard(handlers.Auth.Logout))

	// Contact form
	r.POST("/api/contact", handlers.Contact.Submit)

	return r
}
