package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/edu-resource-hub/internal/policy"
    "github.com/iliyamo/edu-resource-hub/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims arrive as float64; other representations are accepted
// for robustness.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// principalFor loads the caller's user row and builds the policy principal
// for this request. The row is read once per call and the principal treated
// as immutable for the call's duration, so a block applied mid-request does
// not produce a half-authorized mutation.
func principalFor(ctx context.Context, c echo.Context, users repository.UserStore) (policy.Principal, error) {
    uid, err := getUserID(c)
    if err != nil {
        return policy.Principal{}, err
    }
    u, err := users.GetByID(ctx, uid)
    if err != nil {
        return policy.Principal{}, err
    }
    return policy.Principal{
        ID:                u.ID,
        Role:              u.Role,
        IsActive:          u.IsActive,
        IsApprovedTeacher: u.IsApprovedTeacher,
        IsBlocked:         u.IsBlocked,
    }, nil
}

// optionalPrincipal resolves the caller on routes that work both
// anonymously and authenticated (single-resource fetch, download). When a
// valid bearer token is present the full principal is loaded so the owner
// and admin visibility overrides apply; otherwise the anonymous principal
// is returned. A malformed token degrades to anonymous rather than
// erroring, matching how public pages treat stale sessions.
func optionalPrincipal(ctx context.Context, c echo.Context, secret string, users repository.UserStore) policy.Principal {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return policy.AnonymousPrincipal
    }
    raw := strings.TrimPrefix(auth, "Bearer ")
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return policy.AnonymousPrincipal
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return policy.AnonymousPrincipal
    }
    var uid uint64
    switch sub := claims["sub"].(type) {
    case float64:
        uid = uint64(sub)
    case string:
        if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
            uid = n
        }
    }
    if uid == 0 {
        return policy.AnonymousPrincipal
    }
    u, err := users.GetByID(ctx, uid)
    if err != nil {
        return policy.AnonymousPrincipal
    }
    return policy.Principal{
        ID:                u.ID,
        Role:              u.Role,
        IsActive:          u.IsActive,
        IsApprovedTeacher: u.IsApprovedTeacher,
        IsBlocked:         u.IsBlocked,
    }
}

// parsePaging reads ?page= and ?page_size= with defaults and caps.
func parsePaging(c echo.Context) (page, pageSize int) {
    page = 1
    pageSize = 20
    if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
        page = v
    }
    if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
        pageSize = v
    }
    if pageSize > 100 {
        pageSize = 100
    }
    return page, pageSize
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// policyErrJSON translates a policy outcome into the transport response.
// NotFound is never produced here: existence failures surface from the
// repositories before policy runs.
func policyErrJSON(c echo.Context, err error) error {
    switch {
    case errors.Is(err, policy.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, policy.ErrInvalidState):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
    case errors.Is(err, policy.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
