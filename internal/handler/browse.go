package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/config"
	"github.com/iliyamo/edu-resource-hub/internal/policy"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

// BrowseHandler serves the public catalog: listings, search, single-resource
// reads, downloads, topics, tags, comments and rating summaries. Routes are
// reachable anonymously; a bearer token, when present, only widens what a
// direct fetch may see (owners and admins bypass the public predicate).
type BrowseHandler struct {
	Cfg        config.Config
	Users      repository.UserStore
	Resources  repository.ResourceStore
	Topics     repository.TopicStore
	Tags       repository.TagStore
	Comments   repository.CommentStore
	Engagement repository.EngagementStore
}

func NewBrowseHandler(cfg config.Config, u repository.UserStore, r repository.ResourceStore,
	t repository.TopicStore, tg repository.TagStore, cm repository.CommentStore,
	e repository.EngagementStore) *BrowseHandler {
	return &BrowseHandler{Cfg: cfg, Users: u, Resources: r, Topics: t, Tags: tg, Comments: cm, Engagement: e}
}

// List returns the public catalog page: approved, not hidden, newest first.
// ?keyword= (or ?q=) narrows by title substring and ?topic_id= by topic, so
// the same endpoint serves both browsing and search.
func (h *BrowseHandler) List(c echo.Context) error {
	page, pageSize := parsePaging(c)
	kw := c.QueryParam("keyword")
	if kw == "" {
		kw = c.QueryParam("q")
	}
	q := repository.SearchQuery{
		Keyword:  kw,
		Page:     page,
		PageSize: pageSize,
	}
	if v, err := strconv.ParseUint(c.QueryParam("topic_id"), 10, 64); err == nil {
		q.TopicID = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Resources.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"items":     items,
	})
}

// Get returns a single resource with its tags, like count and rating
// summary. Owners and admins can fetch their pending, rejected or hidden
// rows; everyone else is held to the public predicate. A successful read
// bumps the view counter.
func (h *BrowseHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	p := optionalPrincipal(ctx, c, h.Cfg.JWTSecret, h.Users)
	if err := policy.CanReadResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}

	// Counter bump is best effort; the read already succeeded.
	if err := h.Resources.IncrementViews(ctx, id); err == nil {
		res.ViewsCount++
	}

	tags, err := h.Tags.ForResource(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	likes, err := h.Engagement.LikeCount(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rating, err := h.Engagement.RatingFor(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"resource": toResourceResp(res),
		"tags":     tags,
		"likes":    likes,
		"rating":   rating,
	})
}

// Download records an explicit download and returns the resource's URL or
// content. Subject to the same read authorization as Get.
func (h *BrowseHandler) Download(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	p := optionalPrincipal(ctx, c, h.Cfg.JWTSecret, h.Users)
	if err := policy.CanReadResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}

	if err := h.Resources.IncrementDownloads(ctx, id); err == nil {
		res.DownloadsCount++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              res.ID,
		"title":           res.Title,
		"url":             res.URL,
		"content":         res.Content,
		"downloads_count": res.DownloadsCount,
	})
}

// ListTopics returns every topic. The set is small and unpaginated.
func (h *BrowseHandler) ListTopics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	topics, err := h.Topics.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": topics})
}

// ListTags returns every tag.
func (h *BrowseHandler) ListTags(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tags, err := h.Tags.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tags})
}

// Rating returns the average and count of ratings for a readable resource.
func (h *BrowseHandler) Rating(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	p := optionalPrincipal(ctx, c, h.Cfg.JWTSecret, h.Users)
	if err := policy.CanReadResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}

	summary, err := h.Engagement.RatingFor(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, summary)
}

// ListComments returns a page of a resource's comments, oldest first. The
// resource must be readable by the caller.
func (h *BrowseHandler) ListComments(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	p := optionalPrincipal(ctx, c, h.Cfg.JWTSecret, h.Users)
	if err := policy.CanReadResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}

	comments, err := h.Comments.ListForResource(ctx, id, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "items": comments})
}
