package waitlist

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

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
	rg.POST("/waitlist", h.submit)
	rg.GET("/waitlist/options", h.options)
}

func (h *Handler) submit(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		err = validationError(err)
		respond.Error(c, http.StatusBadRequest, "validation_error", formMessage(err), nil)
		return
	}
	created, err := h.Svc.Submit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", formMessage(err), nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "duplicate", "This email is already on the waitlist.", nil)
		default:
			telemetry.Error("waitlist.insert_failed", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", FailureMessage, nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"id": created.ID, "message": SuccessMessage})
}

// options serves the form choices and the current waitlist size. A failed
// count leaves the size out rather than failing the form.
func (h *Handler) options(c *gin.Context) {
	out := gin.H{"annualRevenue": RevenueOptions, "role": RoleOptions}
	n, err := h.Svc.Size(c.Request.Context())
	if err != nil {
		telemetry.Warn("waitlist.count_failed", map[string]any{"error": err.Error()})
	} else {
		out["waitlistSize"] = n
	}
	respond.OK(c, out)
}

func formMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
}
