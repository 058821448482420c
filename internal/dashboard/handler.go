package dashboard

import (
	"context"
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

// RegisterRoutes attaches dashboard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.dashboard)
	rg.GET("/dashboard/:job/viewer", h.viewer)
}

func (h *Handler) dashboard(c *gin.Context) {
	jobID := c.Query("job")
	c.Set("jobId", jobID)
	ctx := auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))

	vm, err := h.Svc.Dashboard(ctx, viewerKey(c), jobID)
	if err != nil {
		writeFetchError(c, err, vm)
		return
	}
	c.Set("jobStatus", vm.Status)
	respond.OK(c, vm)
}

func (h *Handler) viewer(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)
	discrepancy, err1 := strconv.Atoi(c.DefaultQuery("discrepancy", "0"))
	evidence, err2 := strconv.Atoi(c.DefaultQuery("evidence", "0"))
	if err1 != nil || err2 != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "discrepancy and evidence must be integers", nil)
		return
	}
	ctx := auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))

	target, err := h.Svc.Viewer(ctx, viewerKey(c), jobID, discrepancy, evidence)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotViewable):
			respond.Error(c, http.StatusUnprocessableEntity, "not_viewable", err.Error(), nil)
		case errors.Is(err, ErrNotFound), errors.Is(err, auditapi.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			writeFetchError(c, err, nil)
		}
		return
	}
	respond.OK(c, target)
}

func writeFetchError(c *gin.Context, err error, details any) {
	switch {
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusConflict, "superseded", "request superseded by a newer load", nil)
	case errors.Is(err, auditapi.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", FailureBanner(err), details)
	case errors.Is(err, auditapi.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", FailureBanner(err), details)
	}
}

// SessionHeader lets one operator keep independent dashboards open, for
// example in two browser tabs.
const SessionHeader = "X-Client-Session"

// viewerKey scopes loaders to the caller and client session so one
// operator's navigation never cancels another's fetch.
func viewerKey(c *gin.Context) string {
	id := middleware.UserIDFromContext(c)
	if id == "" {
		id = c.ClientIP()
	}
	if session := strings.TrimSpace(c.GetHeader(SessionHeader)); session != "" {
		return id + "#" + session
	}
	return id
}
