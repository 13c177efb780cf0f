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

// ResourceHandler serves the author-facing resource endpoints: create,
// update, delete and the owner's own listing. Moderation endpoints live in
// AdminResourceHandler.
type ResourceHandler struct {
	Users     repository.UserStore
	Resources repository.ResourceStore
	Topics    repository.TopicStore
}

func NewResourceHandler(u repository.UserStore, r repository.ResourceStore, t repository.TopicStore) *ResourceHandler {
	return &ResourceHandler{Users: u, Resources: r, Topics: t}
}

// ----- DTOs -----

type resourceReq struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Content      string  `json:"content"`
	URL          *string `json:"url"`
	ResourceType string  `json:"resource_type"`
	TopicID      uint64  `json:"topic_id"`
}

type resourceResp struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	URL            *string   `json:"url,omitempty"`
	ResourceType   string    `json:"resource_type"`
	Status         string    `json:"status"`
	IsHidden       bool      `json:"is_hidden"`
	IsProblematic  bool      `json:"is_problematic"`
	ViewsCount     uint64    `json:"views_count"`
	DownloadsCount uint64    `json:"downloads_count"`
	TopicID        uint64    `json:"topic_id"`
	AuthorID       uint64    `json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toResourceResp(r *model.Resource) resourceResp {
	return resourceResp{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Content:        r.Content,
		URL:            r.URL,
		ResourceType:   r.ResourceType,
		Status:         r.Status,
		IsHidden:       r.IsHidden,
		IsProblematic:  r.IsProblematic,
		ViewsCount:     r.ViewsCount,
		DownloadsCount: r.DownloadsCount,
		TopicID:        r.TopicID,
		AuthorID:       r.AuthorID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func policySnapshot(r *model.Resource) policy.Resource {
	return policy.Resource{
		ID:            r.ID,
		AuthorID:      r.AuthorID,
		Status:        r.Status,
		IsHidden:      r.IsHidden,
		IsProblematic: r.IsProblematic,
	}
}

var resourceTypes = map[string]bool{
	"BOOK": true, "LECTURE": true, "ARTICLE": true, "LINK": true,
}

func normalizeResourceType(s string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return "ARTICLE", true
	}
	return t, resourceTypes[t]
}

// Create submits a new resource. It always enters PENDING status with the
// caller as author; any author or status supplied by the client is ignored.
func (h *ResourceHandler) Create(c echo.Context) error {
	var req resourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.TopicID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and topic_id required"})
	}
	rtype, ok := normalizeResourceType(req.ResourceType)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown resource_type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanCreateResource(p); err != nil {
		return policyErrJSON(c, err)
	}

	if _, err := h.Topics.GetByID(ctx, req.TopicID); err != nil {
		if err == repository.ErrTopicNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown topic"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	res := model.Resource{
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Content:      req.Content,
		URL:          req.URL,
		ResourceType: rtype,
		TopicID:      req.TopicID,
		AuthorID:     p.ID,
	}
	if err := h.Resources.Create(ctx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create resource failed"})
	}
	return c.JSON(http.StatusCreated, toResourceResp(&res))
}

// Update rewrites the content fields of a resource. The row is fetched and
// authorized inside the same transaction that applies the write, so a
// concurrent delete or ownership check cannot race the update.
func (h *ResourceHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req resourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.TopicID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and topic_id required"})
	}
	rtype, okType := normalizeResourceType(req.ResourceType)
	if !okType {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown resource_type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	if _, err := h.Topics.GetByID(ctx, req.TopicID); err != nil {
		if err == repository.ErrTopicNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown topic"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Resources.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Resources.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.CanUpdateResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}

	res.Title = req.Title
	res.Description = strings.TrimSpace(req.Description)
	res.Content = req.Content
	res.URL = req.URL
	res.ResourceType = rtype
	res.TopicID = req.TopicID

	if err := h.Resources.UpdateContentTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, toResourceResp(res))
}

// Delete removes a resource and its engagement rows. Author or admin only.
func (h *ResourceHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	tx, err := h.Resources.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Resources.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.CanDeleteResource(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}
	if err := h.Resources.DeleteTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx commit failed"})
	}
	committed = true

	return c.NoContent(http.StatusNoContent)
}

// MyResources lists the caller's own resources in every status, including
// pending and rejected ones invisible to the public.
func (h *ResourceHandler) MyResources(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Resources.ListByAuthor(ctx, uid, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]resourceResp, 0, len(list))
	for i := range list {
		out = append(out, toResourceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "items": out})
}
