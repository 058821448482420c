package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractguard-web/internal/shared/auth"
	"contractguard-web/internal/shared/config"
	"contractguard-web/internal/theme"
	"contractguard-web/internal/waitlist"
)

func testDeps(verifier *auth.Verifier) RouterDeps {
	themeSvc := theme.NewService(theme.NewMemoryStorage(), theme.NewStaticPreference(false))
	return RouterDeps{
		Config:          config.Config{Env: "dev"},
		Verifier:        verifier,
		WaitlistHandler: waitlist.NewHandler(waitlist.NewService(waitlist.NewMemoryRepo())),
		ThemeHandler:    theme.NewHandler(themeSvc),
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(testDeps(auth.NewVerifier("secret")))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "waitlist_signups_total")
}

func TestRouterMeUsesDevUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(testDeps(nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"userId":"dev-user"`)
}

func TestRouterProtectsThemeButNotWaitlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(testDeps(auth.NewVerifier("secret")))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/theme", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/waitlist/options", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouterRateLimitsWaitlistSignups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(testDeps(nil))

	limited := false
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code == http.StatusTooManyRequests {
			limited = true
			assert.NotEmpty(t, resp.Header().Get("Retry-After"))
			break
		}
	}
	assert.True(t, limited)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
