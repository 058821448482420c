package theme

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/shared/server/respond"
	"contractguard-web/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/theme", h.get)
	rg.PUT("/theme", h.put)
	rg.POST("/theme/toggle", h.toggle)
}

type setRequest struct {
	Theme string `json:"theme"`
}

func (h *Handler) get(c *gin.Context) {
	respond.OK(c, gin.H{"theme": h.Svc.Current()})
}

func (h *Handler) put(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	t, ok := Parse(req.Theme)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrInvalidTheme.Error(), nil)
		return
	}
	if err := h.Svc.Set(t); err != nil {
		telemetry.Error("theme.set_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save theme", nil)
		return
	}
	respond.OK(c, gin.H{"theme": t})
}

func (h *Handler) toggle(c *gin.Context) {
	t, err := h.Svc.Toggle()
	if err != nil {
		telemetry.Error("theme.toggle_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save theme", nil)
		return
	}
	respond.OK(c, gin.H{"theme": t})
}
