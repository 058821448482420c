package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/chat"
	"contractguard-web/internal/dashboard"
	"contractguard-web/internal/evidence"
	"contractguard-web/internal/shared/auth"
	"contractguard-web/internal/shared/config"
	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/server/middleware"
	"contractguard-web/internal/shared/server/respond"
	"contractguard-web/internal/theme"
	"contractguard-web/internal/upload"
	"contractguard-web/internal/waitlist"
)

// RouterDeps carries everything NewRouter registers. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	Verifier         *auth.Verifier
	DashboardHandler *dashboard.Handler
	UploadHandler    *upload.Handler
	ChatHandler      *chat.Handler
	EvidenceHandler  *evidence.Handler
	WaitlistHandler  *waitlist.Handler
	ThemeHandler     *theme.Handler
	RateLimiter      *middleware.RateLimiter
}

// Rate limit groups. Uploads and chat hit the audit service hardest.
var defaultRateLimits = map[string]middleware.RateLimitRule{
	"UPLOAD":   {Rate: 0.5, Burst: 10},
	"CHAT":     {Rate: 1, Burst: 10},
	"WAITLIST": {Rate: 0.2, Burst: 5},
	"DEFAULT":  {Rate: 10, Burst: 40},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    defaultRateLimits,
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}
	if deps.EvidenceHandler != nil {
		deps.EvidenceHandler.RegisterRoutes(api)
	}
	if deps.WaitlistHandler != nil {
		deps.WaitlistHandler.RegisterRoutes(api)
	}
	if deps.ThemeHandler != nil {
		deps.ThemeHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/upload") && c.Request.Method == http.MethodPost:
		return "UPLOAD"
	case strings.HasSuffix(path, "/chat") && c.Request.Method == http.MethodPost:
		return "CHAT"
	case path == "/api/v1/waitlist" && c.Request.Method == http.MethodPost:
		return "WAITLIST"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
