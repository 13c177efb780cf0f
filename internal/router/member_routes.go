package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/handler"
	"github.com/iliyamo/edu-resource-hub/internal/middleware"
)

// RegisterMember registers the endpoints available to every authenticated
// account under /v1.  All routes require a valid JWT; finer rules (ownership,
// blocked accounts, the tag-creation switch) are enforced per request by the
// policy package, so the role middleware here is only a coarse gate.
func RegisterMember(e *echo.Echo, r *handler.ResourceHandler, en *handler.EngagementHandler,
	tx *handler.TaxonomyHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "TEACHER", "ADMIN"),
	)

	// Authoring. Reads of single resources and the public catalog are
	// registered on the public router.
	g.POST("/resources", r.Create)
	g.PUT("/resources/:id", r.Update)
	g.DELETE("/resources/:id", r.Delete)
	g.GET("/my/resources", r.MyResources)

	// Per-user engagement sets.
	g.POST("/resources/:id/like", en.Like)
	g.DELETE("/resources/:id/like", en.Unlike)
	g.POST("/resources/:id/save", en.Save)
	g.DELETE("/resources/:id/save", en.Unsave)
	g.PUT("/resources/:id/rating", en.Rate)
	g.GET("/my/liked", en.MyLiked)
	g.GET("/my/saved", en.MySaved)

	// Comments.
	g.POST("/resources/:id/comments", en.CreateComment)
	g.DELETE("/comments/:comment_id", en.DeleteComment)

	// Tagging. Creating tags may be admin-only depending on configuration;
	// attaching is for the resource's author or an admin.
	g.POST("/tags", tx.CreateTag)
	g.PUT("/resources/:id/tags/:tag_id", tx.AttachTag)
	g.DELETE("/resources/:id/tags/:tag_id", tx.DetachTag)
}
