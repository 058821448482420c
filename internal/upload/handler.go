package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/server/middleware"
	"contractguard-web/internal/shared/server/respond"
)

const (
	maxFileBytes    = 25 << 20
	maxRequestBytes = 100 << 20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload/contracts", h.uploadContracts)
	rg.POST("/upload/:job/billing", h.uploadBilling)
	rg.POST("/upload/:job/submit", h.submit)
	rg.GET("/upload/:job/status", h.status)
}

func (h *Handler) uploadContracts(c *gin.Context) {
	docs, ok := readDocuments(c)
	if !ok {
		return
	}
	vendor := c.PostForm("vendor_name")
	resp, err := h.Svc.UploadContracts(h.ctx(c), owner(c), vendor, docs)
	if err != nil {
		writeUploadError(c, err, msgContractsFailed)
		return
	}
	c.Set("jobId", resp.JobID)
	respond.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) uploadBilling(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)
	docs, ok := readDocuments(c)
	if !ok {
		return
	}
	resp, err := h.Svc.UploadBilling(h.ctx(c), owner(c), jobID, docs)
	if err != nil {
		writeUploadError(c, err, msgBillingFailed)
		return
	}
	respond.OK(c, resp)
}

func (h *Handler) submit(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)
	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))

	resp, view, err := h.Svc.Submit(h.ctx(c), jobID, wait)
	if view != nil {
		c.Set("jobStatus", view.Status)
	}
	if err != nil {
		if errors.Is(err, ErrPollExhausted) {
			respond.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID, "message": msgAuditStillActive, "status": view})
			return
		}
		writeUploadError(c, err, msgStartFailed)
		return
	}
	if view == nil {
		respond.JSON(c, http.StatusAccepted, resp)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) status(c *gin.Context) {
	jobID := c.Param("job")
	c.Set("jobId", jobID)

	view, err := h.Svc.Status(h.ctx(c), owner(c), jobID)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			c.Header("Retry-After", strconv.Itoa(h.Svc.RetryAfterSeconds()))
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "status polled too frequently", nil)
			return
		}
		writeUploadError(c, err, "Failed to read job status.")
		return
	}
	c.Set("jobStatus", view.Status)
	respond.OK(c, view)
}

func (h *Handler) ctx(c *gin.Context) context.Context {
	return auditapi.WithBearerToken(c.Request.Context(), middleware.BearerTokenFromContext(c))
}

func owner(c *gin.Context) string {
	if id := middleware.UserIDFromContext(c); id != "" {
		return id
	}
	return c.ClientIP()
}

func readDocuments(c *gin.Context) ([]Document, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "expected multipart form data", nil)
		return nil, false
	}
	headers := form.File["files"]
	docs := make([]Document, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxFileBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("%s exceeds %d MB", fh.Filename, maxFileBytes>>20), nil)
			return nil, false
		}
		data, err := readPart(fh)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read "+fh.Filename, nil)
			return nil, false
		}
		docs = append(docs, Document{Name: fh.Filename, Data: data})
	}
	return docs, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxFileBytes+1))
}

func writeUploadError(c *gin.Context, err error, fallback string) {
	var apiErr *auditapi.APIError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, auditapi.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusRequestTimeout, "canceled", "request canceled", nil)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		respond.Error(c, status, "upstream_error", auditapi.DetailOr(err, fallback), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", fallback, nil)
	}
}
