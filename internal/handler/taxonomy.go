package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/config"
	"github.com/iliyamo/edu-resource-hub/internal/policy"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

// TaxonomyHandler serves topic and tag management. Public listings live in
// BrowseHandler; everything here mutates and requires authentication.
type TaxonomyHandler struct {
	Cfg       config.Config
	Users     repository.UserStore
	Topics    repository.TopicStore
	Tags      repository.TagStore
	Resources repository.ResourceStore
}

func NewTaxonomyHandler(cfg config.Config, u repository.UserStore, t repository.TopicStore,
	tg repository.TagStore, r repository.ResourceStore) *TaxonomyHandler {
	return &TaxonomyHandler{Cfg: cfg, Users: u, Topics: t, Tags: tg, Resources: r}
}

type nameReq struct {
	Name string `json:"name"`
}

// CreateTopic adds a topic. Admin only.
func (h *TaxonomyHandler) CreateTopic(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanCreateTopic(p); err != nil {
		return policyErrJSON(c, err)
	}

	topic, err := h.Topics.Create(ctx, req.Name)
	if err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "topic name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create topic failed"})
	}
	return c.JSON(http.StatusCreated, topic)
}

// DeleteTopic removes a topic with no resources. A topic still referenced
// by resources is a conflict, not a cascade.
func (h *TaxonomyHandler) DeleteTopic(c echo.Context) error {
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
	if err := policy.CanModerate(p); err != nil {
		return policyErrJSON(c, err)
	}

	if err := h.Topics.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrTopicNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		case repository.ErrTopicInUse:
			return policyErrJSON(c, policy.ErrConflict)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete topic failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTag adds a tag. Whether non-admins may create tags is a deployment
// switch (TAG_CREATE_ADMIN_ONLY).
func (h *TaxonomyHandler) CreateTag(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanCreateTag(p, policy.Config{TagCreateAdminOnly: h.Cfg.TagCreateAdminOnly}); err != nil {
		return policyErrJSON(c, err)
	}

	tag, err := h.Tags.Create(ctx, req.Name)
	if err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "tag name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tag failed"})
	}
	return c.JSON(http.StatusCreated, tag)
}

// AttachTag adds a tag to a resource's tag set; DetachTag removes it. Both
// are idempotent and restricted to the resource's author or an admin.
func (h *TaxonomyHandler) AttachTag(c echo.Context) error {
	return h.mutateTagSet(c, h.Tags.Attach)
}

func (h *TaxonomyHandler) DetachTag(c echo.Context) error {
	return h.mutateTagSet(c, h.Tags.Detach)
}

func (h *TaxonomyHandler) mutateTagSet(c echo.Context,
	op func(context.Context, uint64, uint64) error) error {
	resourceID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	tagID, ok := parseID(c, "tag_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Resources.GetByID(ctx, resourceID)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.CanManageResourceTags(p, policySnapshot(res)); err != nil {
		return policyErrJSON(c, err)
	}
	if _, err := h.Tags.GetByID(ctx, tagID); err != nil {
		if err == repository.ErrTagNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := op(ctx, resourceID, tagID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tag update failed"})
	}

	tags, err := h.Tags.ForResource(ctx, resourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"resource_id": resourceID, "tags": tags})
}
