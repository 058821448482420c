package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/telemetry"
)

const (
	SuccessMessage = "Thanks! We'll reach out with your report."
	FailureMessage = "Something went wrong. Please try again."
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Submit validates and stores a signup. Every form field is required.
func (s *Service) Submit(ctx context.Context, req Request) (Request, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Company = strings.TrimSpace(req.Company)
	req.AnnualRevenue = strings.TrimSpace(req.AnnualRevenue)
	req.Role = strings.TrimSpace(req.Role)
	req.ContractVolume = strings.TrimSpace(req.ContractVolume)
	req.BillingChallenge = strings.TrimSpace(req.BillingChallenge)
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return Request{}, validationError(err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	req.ID = uuid.NewString()
	req.CreatedAt = now().UTC()
	if err := s.Repo.Create(ctx, req); err != nil {
		return Request{}, err
	}
	metrics.IncWaitlistSignup()
	telemetry.Info("waitlist.signup", map[string]any{
		"waitlist_id": req.ID,
		"company":     req.Company,
		"revenue":     req.AnnualRevenue,
	})
	return req, nil
}

// Size reports how many signups are on the waitlist.
func (s *Service) Size(ctx context.Context) (int, error) {
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count waitlist: %w", err)
	}
	return n, nil
}

// validationError turns the first failed binding rule into the message the
// signup form shows.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	first := verrs[0]
	if first.Tag() == "email" {
		return fmt.Errorf("%w: Please enter a valid email address.", ErrInvalidInput)
	}
	label, ok := fieldLabels[first.StructField()]
	if !ok {
		label = first.Field()
	}
	return fmt.Errorf("%w: Please complete the %s.", ErrInvalidInput, label)
}
