package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/config"
	"github.com/iliyamo/edu-resource-hub/internal/policy"
	"github.com/iliyamo/edu-resource-hub/internal/queue"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
	queue_publisher "github.com/iliyamo/edu-resource-hub/internal/service"
)

// AdminResourceHandler serves the moderation surface: the pending queue,
// filtered listings that bypass the visibility predicate, status decisions,
// flag toggles and the stats snapshot. Every route sits behind the ADMIN
// role gate; the policy check still runs per request so a blocked or
// deactivated admin token cannot moderate.
type AdminResourceHandler struct {
	Cfg       config.Config
	Users     repository.UserStore
	Resources repository.ResourceStore
	Stats     repository.StatsStore
}

func NewAdminResourceHandler(cfg config.Config, u repository.UserStore,
	r repository.ResourceStore, s repository.StatsStore) *AdminResourceHandler {
	return &AdminResourceHandler{Cfg: cfg, Users: u, Resources: r, Stats: s}
}

// Pending returns the moderation queue: pending resources, oldest first.
func (h *AdminResourceHandler) Pending(c echo.Context) error {
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanModerate(p); err != nil {
		return policyErrJSON(c, err)
	}

	pending := policy.StatusPending
	list, total, err := h.Resources.ListAdmin(ctx,
		repository.AdminFilter{Status: &pending}, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]resourceResp, 0, len(list))
	for i := range list {
		out = append(out, toResourceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "total": total, "items": out})
}

// List returns resources matching ?status=, ?hidden= and ?problematic=
// filters. Unset filters are not applied; admins see every row.
func (h *AdminResourceHandler) List(c echo.Context) error {
	page, pageSize := parsePaging(c)

	var f repository.AdminFilter
	if s := c.QueryParam("status"); s != "" {
		status, err := policy.ParseStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		f.Status = &status
	}
	if s := c.QueryParam("hidden"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hidden filter"})
		}
		f.Hidden = &v
	}
	if s := c.QueryParam("problematic"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid problematic filter"})
		}
		f.Problematic = &v
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

	list, total, err := h.Resources.ListAdmin(ctx, f, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]resourceResp, 0, len(list))
	for i := range list {
		out = append(out, toResourceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "total": total, "items": out})
}

type statusReq struct {
	Status string `json:"status"`
}

// SetStatus applies a moderation decision. The row is fetched and written
// inside one transaction so two concurrent decisions on the same resource
// serialize; the broker event goes out after commit and is best effort.
func (h *AdminResourceHandler) SetStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	newStatus, err := policy.ParseStatus(req.Status)
	if err != nil {
		return policyErrJSON(c, err)
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
	oldStatus := res.Status
	if err := policy.ValidateStatusTransition(oldStatus, newStatus); err != nil {
		return policyErrJSON(c, err)
	}
	if err := h.Resources.SetStatusTx(ctx, tx, id, newStatus); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx commit failed"})
	}
	committed = true

	// Decision is durable; a broker outage only costs the audit event.
	_ = queue_publisher.PublishResourceModerated(ctx, queue.ResourceModeratedEvent{
		ResourceID:  res.ID,
		Title:       res.Title,
		AuthorID:    res.AuthorID,
		ModeratorID: p.ID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		IsHidden:    res.IsHidden,
		Problematic: res.IsProblematic,
		DecidedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	res.Status = newStatus
	return c.JSON(http.StatusOK, toResourceResp(res))
}

type flagsReq struct {
	IsHidden      *bool `json:"is_hidden"`
	IsProblematic *bool `json:"is_problematic"`
}

// SetFlags toggles the hidden and problematic flags. The flags are
// orthogonal to the status and to each other; omitted fields keep their
// current value.
func (h *AdminResourceHandler) SetFlags(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req flagsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.IsHidden == nil && req.IsProblematic == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_hidden or is_problematic required"})
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
	hidden := res.IsHidden
	problematic := res.IsProblematic
	if req.IsHidden != nil {
		hidden = *req.IsHidden
	}
	if req.IsProblematic != nil {
		problematic = *req.IsProblematic
	}
	if err := h.Resources.SetFlagsTx(ctx, tx, id, hidden, problematic); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tx commit failed"})
	}
	committed = true

	_ = queue_publisher.PublishResourceModerated(ctx, queue.ResourceModeratedEvent{
		ResourceID:  res.ID,
		Title:       res.Title,
		AuthorID:    res.AuthorID,
		ModeratorID: p.ID,
		OldStatus:   res.Status,
		NewStatus:   res.Status,
		IsHidden:    hidden,
		Problematic: problematic,
		DecidedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	res.IsHidden = hidden
	res.IsProblematic = problematic
	return c.JSON(http.StatusOK, toResourceResp(res))
}

// StatsSnapshot returns the dashboard aggregate: per-status counts, flag
// counts, counter sums and the most used tags.
func (h *AdminResourceHandler) StatsSnapshot(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanModerate(p); err != nil {
		return policyErrJSON(c, err)
	}

	topN := h.Cfg.StatsTopTags
	if s := strings.TrimSpace(c.QueryParam("top_tags")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 50 {
			topN = v
		}
	}
	stats, err := h.Stats.Collect(ctx, topN)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
