package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/policy"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    uint64
		wantErr bool
	}{
		{"float64 from jwt claims", float64(12), 12, false},
		{"uint64", uint64(3), 3, false},
		{"int", 5, 5, false},
		{"numeric string", "99", 99, false},
		{"garbage string", "abc", 0, true},
		{"missing", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, "/")
			if tt.value != nil {
				c.Set("user_id", tt.value)
			}
			got, err := getUserID(c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getUserID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("getUserID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParsePaging(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantPage int
		wantSize int
	}{
		{"defaults", "/", 1, 20},
		{"explicit values", "/?page=3&page_size=50", 3, 50},
		{"zero page falls back", "/?page=0", 1, 20},
		{"negative page falls back", "/?page=-2", 1, 20},
		{"oversized page_size capped", "/?page_size=500", 1, 100},
		{"garbage ignored", "/?page=abc&page_size=xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, tt.target)
			page, size := parsePaging(c)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("parsePaging() = (%d, %d), want (%d, %d)", page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name   string
		param  string
		want   uint64
		wantOK bool
	}{
		{"valid", "17", 17, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-4", 0, false},
		{"garbage rejected", "abc", 0, false},
		{"empty rejected", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, "/")
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			got, ok := parseID(c, "id")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseID() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPolicyErrJSON(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"forbidden maps to 403", policy.ErrForbidden, http.StatusForbidden},
		{"invalid state maps to 400", policy.ErrInvalidState, http.StatusBadRequest},
		{"conflict maps to 409", policy.ErrConflict, http.StatusConflict},
		{"unknown error maps to 500", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t, "/")
			if err := policyErrJSON(c, tt.err); err != nil {
				t.Fatalf("policyErrJSON() returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
