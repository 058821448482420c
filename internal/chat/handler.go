package chat

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/server/middleware"
	"contractguard-web/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analysis/:job/chat", h.history)
	rg.POST("/analysis/:job/chat", h.ask)
	rg.DELETE("/analysis/:job/chat", h.reset)
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) history(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)
	respond.OK(c, gin.H{"messages": h.Svc.History(owner(c), jobID)})
}

func (h *Handler) reset(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)
	h.Svc.Reset(owner(c), jobID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ask(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ctx := auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))
	reply, err := h.Svc.Ask(ctx, owner(c), jobID, req.Question)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "chat failed", nil)
		return
	}

	if !wantsStream(c) {
		respond.OK(c, reply)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("question", reply.Question)
	streaming := reply.Answer
	streaming.Streaming = true
	streaming.Sources = nil
	err = Stream(c.Request.Context(), reply.Answer.Content, h.Svc.StreamDelay, func(prefix string) error {
		streaming.Content = prefix
		c.SSEvent("delta", streaming)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		return
	}
	c.SSEvent("done", reply.Answer)
	c.Writer.Flush()
}

func wantsStream(c *gin.Context) bool {
	if ok, _ := strconv.ParseBool(c.Query("stream")); ok {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func owner(c *gin.Context) string {
	if id := middleware.UserIDFromContext(c); id != "" {
		return id
	}
	return c.ClientIP()
}
