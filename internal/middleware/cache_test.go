package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/edu-resource-hub/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "browse",
		MaxBodyBytes: 1 << 20,
	}
}

func newCacheServer(t *testing.T, cfg config.CacheConfig, rdb *redis.Client, hits *int64) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/v1/resources", func(c echo.Context) error {
		atomic.AddInt64(hits, 1)
		return c.JSON(http.StatusOK, echo.Map{"items": []string{"a", "b"}})
	}, NewRedisCache(cfg, rdb))
	return e
}

func TestRedisCache_HitServesStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int64
	e := newCacheServer(t, cacheTestConfig(), rdb, &hits)

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/resources?page=1", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/resources?page=1", nil))
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d, want 200", second.Code)
	}
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if hits != 1 {
		t.Errorf("handler invoked %d times, want 1", hits)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs from original body")
	}
}

func TestRedisCache_QueryIsPartOfKey(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int64
	e := newCacheServer(t, cacheTestConfig(), rdb, &hits)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/resources?page=1", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/resources?page=2", nil))

	if hits != 2 {
		t.Errorf("handler invoked %d times, want 2 (distinct queries must not share entries)", hits)
	}
}

func TestRedisCache_DisabledPassesThrough(t *testing.T) {
	cfg := cacheTestConfig()
	cfg.Enabled = false

	var hits int64
	e := newCacheServer(t, cfg, nil, &hits)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/resources", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
	if hits != 2 {
		t.Errorf("handler invoked %d times, want 2 when cache disabled", hits)
	}
}
