package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/edu-resource-hub/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/edu-resource-hub/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems probe this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and the two refresh flavours.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// refresh_token body or an Authorization header and revokes accordingly.
	g.POST("/logout", a.Logout)

	// Protected profile endpoint. Every authenticated role may read its
	// own account.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("STUDENT", "TEACHER", "ADMIN"))
	auth.GET("/me", a.Me)

	// Alias kept at the top level so clients can log out with only a
	// refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated catalog endpoints.  These
// routes never require a JWT; a bearer token, when present, only widens what
// a direct resource fetch may return.  The rate limiter guards the whole
// group; the response cache fronts only the principal-independent listings,
// since single-resource reads vary by caller and bump counters.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", limiter)

	g.GET("/resources", b.List, cache)
	g.GET("/search/resources", b.List, cache)
	g.GET("/topics", b.ListTopics, cache)
	g.GET("/tags", b.ListTags, cache)

	g.GET("/resources/:id", b.Get)
	g.GET("/resources/:id/download", b.Download)
	g.GET("/resources/:id/comments", b.ListComments)
	g.GET("/resources/:id/rating", b.Rating)
}
