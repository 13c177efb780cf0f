package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/handler"
	"github.com/iliyamo/edu-resource-hub/internal/middleware"
)

// RegisterAdmin registers moderation and administration endpoints under
// /v1/admin.  All routes require a valid JWT with the ADMIN role; the
// handlers re-check the principal against the user row so a stale token for
// a blocked or demoted account cannot moderate.
func RegisterAdmin(e *echo.Echo, ar *handler.AdminResourceHandler, au *handler.AdminUserHandler,
	tx *handler.TaxonomyHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// Moderation queue and filtered listings that bypass the public
	// visibility predicate.
	g.GET("/resources/pending", ar.Pending)
	g.GET("/resources", ar.List)
	g.PUT("/resources/:id/status", ar.SetStatus)
	g.PUT("/resources/:id/flags", ar.SetFlags)
	g.GET("/stats", ar.StatsSnapshot)

	// Account administration.
	g.GET("/users", au.List)
	g.GET("/teachers/unapproved", au.PendingTeachers)
	g.PUT("/users/:id/approve", au.ApproveTeacher)
	g.PUT("/users/:id/block", au.Block)
	g.PUT("/users/:id/unblock", au.Unblock)

	// Taxonomy management; public listings live on the public router. The
	// admin tag route bypasses the tag-creation switch only in the sense
	// that an admin always satisfies it.
	g.POST("/topics", tx.CreateTopic)
	g.DELETE("/topics/:id", tx.DeleteTopic)
	g.POST("/tags", tx.CreateTag)
}
