package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/model"
	"github.com/iliyamo/edu-resource-hub/internal/policy"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

// EngagementHandler serves likes, saves, ratings and comments. All routes
// sit behind the JWT middleware; a caller engages only with their own sets,
// and only on resources they are allowed to read.
type EngagementHandler struct {
	Users      repository.UserStore
	Resources  repository.ResourceStore
	Engagement repository.EngagementStore
	Comments   repository.CommentStore
}

func NewEngagementHandler(u repository.UserStore, r repository.ResourceStore,
	e repository.EngagementStore, cm repository.CommentStore) *EngagementHandler {
	return &EngagementHandler{Users: u, Resources: r, Engagement: e, Comments: cm}
}

// engageTarget runs the shared preamble: resolve the principal, fetch the
// resource, and check both the engagement gate and read visibility. When ok
// is false the HTTP response has already been written and the handler
// should return err as-is.
func (h *EngagementHandler) engageTarget(ctx context.Context, c echo.Context) (p policy.Principal, id uint64, ok bool, err error) {
	id, valid := parseID(c, "id")
	if !valid {
		return p, 0, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err = principalFor(ctx, c, h.Users)
	if err != nil {
		return p, 0, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanEngage(p); err != nil {
		return p, 0, false, policyErrJSON(c, err)
	}
	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return p, 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return p, 0, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.CanReadResource(p, policySnapshot(res)); err != nil {
		return p, 0, false, policyErrJSON(c, err)
	}
	return p, id, true, nil
}

// Like adds the resource to the caller's like set; repeating it is a no-op.
func (h *EngagementHandler) Like(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}
	if err := h.Engagement.Like(ctx, p.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "like failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Unlike removes the membership; unliking an unliked resource succeeds.
func (h *EngagementHandler) Unlike(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}
	if err := h.Engagement.Unlike(ctx, p.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unlike failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Save and Unsave mirror Like/Unlike for the bookmark set.
func (h *EngagementHandler) Save(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}
	if err := h.Engagement.Save(ctx, p.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EngagementHandler) Unsave(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}
	if err := h.Engagement.Unsave(ctx, p.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unsave failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type rateReq struct {
	Value int `json:"value"`
}

// Rate upserts the caller's rating of a resource. One rating per user per
// resource; a second call overwrites the first.
func (h *EngagementHandler) Rate(c echo.Context) error {
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := policy.ValidateRating(req.Value); err != nil {
		return policyErrJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}
	if err := h.Engagement.UpsertRating(ctx, id, p.ID, req.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rate failed"})
	}
	summary, err := h.Engagement.RatingFor(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"value": req.Value, "rating": summary})
}

type commentReq struct {
	Body string `json:"body"`
}

// CreateComment appends a comment to a readable resource.
func (h *EngagementHandler) CreateComment(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := policy.ValidateCommentBody(req.Body); err != nil {
		return policyErrJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, id, ok, err := h.engageTarget(ctx, c)
	if !ok {
		return err
	}

	cm := model.Comment{
		ResourceID: id,
		UserID:     p.ID,
		Body:       strings.TrimSpace(req.Body),
	}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          cm.ID,
		"resource_id": cm.ResourceID,
		"user_id":     cm.UserID,
		"body":        cm.Body,
		"created_at":  cm.CreatedAt,
	})
}

// DeleteComment removes a comment. The comment's author or an admin may
// delete it; the row is fetched first so the check runs against the actual
// author.
func (h *EngagementHandler) DeleteComment(c echo.Context) error {
	id, ok := parseID(c, "comment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCommentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.CanDeleteComment(p, cm.UserID); err != nil {
		return policyErrJSON(c, err)
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MyLiked lists the resources in the caller's like set.
func (h *EngagementHandler) MyLiked(c echo.Context) error {
	return h.listMembership(c, h.Resources.ListLikedBy)
}

// MySaved lists the caller's bookmarks.
func (h *EngagementHandler) MySaved(c echo.Context) error {
	return h.listMembership(c, h.Resources.ListSavedBy)
}

func (h *EngagementHandler) listMembership(c echo.Context,
	list func(context.Context, uint64, int, int) ([]model.Resource, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := list(ctx, uid, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]resourceResp, 0, len(items))
	for i := range items {
		out = append(out, toResourceResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "items": out})
}
