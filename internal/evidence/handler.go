package evidence

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/server/middleware"
	"contractguard-web/internal/shared/server/respond"
	"contractguard-web/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches contract document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:job/contracts/:filename", h.contract)
	rg.GET("/jobs/:job/contracts/:filename/pages/:page", h.page)
}

// ContractPath is the route serving filename of jobID through the cache.
func ContractPath(jobID, filename string) string {
	return "/api/v1/jobs/" + url.PathEscape(jobID) + "/contracts/" + url.PathEscape(filename)
}

func (h *Handler) contract(c *gin.Context) {
	jobID, filename := c.Param("job"), c.Param("filename")
	c.Set("jobId", jobID)
	ctx := auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))

	body, contentType, err := h.Svc.Contract(ctx, principal(c), jobID, filename)
	if err != nil {
		writeError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		telemetry.Warn("evidence.stream_failed", map[string]any{"job_id": jobID, "file": filename, "error": err.Error()})
	}
}

func (h *Handler) page(c *gin.Context) {
	jobID, filename := c.Param("job"), c.Param("filename")
	c.Set("jobId", jobID)
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "page must be a positive integer", nil)
		return
	}
	ctx := auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))

	out, err := h.Svc.PageText(ctx, principal(c), jobID, filename, page)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

// principal scopes cached documents to the verified operator.
func principal(c *gin.Context) string {
	user := middleware.UserIDFromContext(c)
	if user == "" {
		return ""
	}
	return middleware.OrganizationIDFromContext(c) + "/" + user
}

func writeError(c *gin.Context, err error) {
	var apiErr *auditapi.APIError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, auditapi.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrPageOutOfRange):
		respond.Error(c, http.StatusNotFound, "page_not_found", err.Error(), nil)
	case errors.Is(err, ErrNotPDF):
		respond.Error(c, http.StatusUnprocessableEntity, "not_pdf", "document is not a readable pdf", nil)
	case errors.Is(err, auditapi.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "contract not found", nil)
	case errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", auditapi.DetailOr(err, "access to this contract was denied"), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", auditapi.DetailOr(err, "failed to load contract"), nil)
	}
}
