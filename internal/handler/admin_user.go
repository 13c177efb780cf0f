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

// AdminUserHandler serves account administration: listings, teacher
// approval and block/unblock.
type AdminUserHandler struct {
	Users repository.UserStore
}

func NewAdminUserHandler(u repository.UserStore) *AdminUserHandler {
	return &AdminUserHandler{Users: u}
}

type adminUserRow struct {
	ID                uint64    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"is_active"`
	IsApprovedTeacher bool      `json:"is_approved_teacher"`
	IsBlocked         bool      `json:"is_blocked"`
	BlockReason       *string   `json:"block_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toAdminUserRow(u model.User) adminUserRow {
	return adminUserRow{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		IsActive:          u.IsActive,
		IsApprovedTeacher: u.IsApprovedTeacher,
		IsBlocked:         u.IsBlocked,
		BlockReason:       u.BlockReason,
		CreatedAt:         u.CreatedAt,
	}
}

// authorize resolves the caller and checks the admin gate. When ok is
// false the HTTP response has already been written.
func (h *AdminUserHandler) authorize(ctx context.Context, c echo.Context) (policy.Principal, bool, error) {
	p, err := principalFor(ctx, c, h.Users)
	if err != nil {
		return policy.Principal{}, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := policy.CanAdministerUsers(p); err != nil {
		return policy.Principal{}, false, policyErrJSON(c, err)
	}
	return p, true, nil
}

// List returns a page of all accounts.
func (h *AdminUserHandler) List(c echo.Context) error {
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok, err := h.authorize(ctx, c); !ok {
		return err
	}
	users, err := h.Users.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserRow, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserRow(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "items": out})
}

// PendingTeachers returns teacher accounts awaiting approval.
func (h *AdminUserHandler) PendingTeachers(c echo.Context) error {
	page, pageSize := parsePaging(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok, err := h.authorize(ctx, c); !ok {
		return err
	}
	users, err := h.Users.ListUnapprovedTeachers(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserRow, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserRow(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": pageSize, "items": out})
}

// ApproveTeacher marks a teacher account approved. Approving a non-teacher
// is an invalid-state error; re-approving an approved teacher is a no-op.
func (h *AdminUserHandler) ApproveTeacher(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok, err := h.authorize(ctx, c); !ok {
		return err
	}

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := policy.ApproveTeacher(policy.User{
		ID:                target.ID,
		Role:              target.Role,
		IsApprovedTeacher: target.IsApprovedTeacher,
		IsBlocked:         target.IsBlocked,
	}); err != nil {
		return policyErrJSON(c, err)
	}
	if err := h.Users.ApproveTeacher(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
	}
	target.IsApprovedTeacher = true
	return c.JSON(http.StatusOK, toAdminUserRow(target))
}

type blockReq struct {
	Reason string `json:"reason"`
}

// Block disables an account with an optional reason; Unblock clears both
// the flag and the stored reason.
func (h *AdminUserHandler) Block(c echo.Context) error {
	return h.setBlocked(c, true)
}

func (h *AdminUserHandler) Unblock(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *AdminUserHandler) setBlocked(c echo.Context, blocked bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req blockReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, ok, err := h.authorize(ctx, c)
	if !ok {
		return err
	}
	// An admin cannot lock themselves out.
	if blocked && p.ID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot block own account"})
	}

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var reason *string
	if blocked {
		if s := strings.TrimSpace(req.Reason); s != "" {
			reason = &s
		}
	}
	if err := h.Users.SetBlocked(ctx, id, blocked, reason); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	target.IsBlocked = blocked
	target.BlockReason = reason
	return c.JSON(http.StatusOK, toAdminUserRow(target))
}
