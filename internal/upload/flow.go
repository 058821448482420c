package upload

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/telemetry"
)

const (
	defaultRedirectDelay = 1500 * time.Millisecond

	msgVendorRequired   = "Please enter the vendor name before continuing."
	msgContractsFailed  = "Failed to upload contracts."
	msgBillingFailed    = "Failed to upload billing data."
	msgBillingFileTypes = "Billing exports must be .csv, .xls or .xlsx files."
	msgStartFailed      = "Failed to start audit."
	msgAuditComplete    = "Audit complete. Redirecting to dashboard..."
	msgAuditFailed      = "Audit failed. Please retry."
	msgAuditStillActive = "The audit is still running. Check the dashboard again shortly."
)

// Step is the wizard page the flow is on.
type Step int

const (
	StepContracts Step = iota + 1
	StepBilling
	StepProcessing
)

// Client is the slice of the audit API the flow drives.
type Client interface {
	StatusFetcher
	UploadContracts(ctx context.Context, vendorName string, files []auditapi.File) (*auditapi.UploadResponse, error)
	UploadBilling(ctx context.Context, jobID string, files []auditapi.File) (*auditapi.UploadResponse, error)
	Submit(ctx context.Context, jobID string) (*auditapi.UploadResponse, error)
}

// State is a snapshot of the flow.
type State struct {
	Step      Step               `json:"step"`
	JobID     string             `json:"jobId,omitempty"`
	Vendor    string             `json:"vendor,omitempty"`
	Stage     Stage              `json:"stage,omitempty"`
	Status    string             `json:"status,omitempty"`
	Uploading bool               `json:"uploading"`
	Message   string             `json:"message,omitempty"`
	Progress  *auditapi.Progress `json:"progress,omitempty"`
}

// Board renders the stage board for the current state.
func (s State) Board() []StageRow {
	return Board(s.Stage, s.Progress)
}

// Flow walks one audit from contract upload to a terminal status:
// upload, document_extraction, llm_extraction, reconciliation, then
// completed or failed.
type Flow struct {
	client Client
	Poller *Poller
	// RedirectDelay is how long the completion message shows before
	// OnComplete fires.
	RedirectDelay time.Duration
	OnComplete    func(dashboardURL string)
	OnChange      func(State)

	mu    sync.Mutex
	state State
}

// NewFlow constructs a Flow polling with the default poller.
func NewFlow(client Client) *Flow {
	return &Flow{
		client:        client,
		Poller:        NewPoller(client),
		RedirectDelay: defaultRedirectDelay,
		state:         State{Step: StepContracts},
	}
}

// DashboardURL is where a finished audit is reviewed.
func DashboardURL(jobID string) string {
	return "/dashboard?job=" + url.QueryEscape(jobID)
}

// State returns a snapshot.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// UploadContracts creates the job from the vendor's contracts and moves the
// flow to the billing step.
func (f *Flow) UploadContracts(ctx context.Context, vendor string, files []auditapi.File) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("%w: at least one contract file is required", ErrInvalidInput)
	}
	if strings.TrimSpace(vendor) == "" {
		f.update(func(s *State) { s.Message = msgVendorRequired })
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, msgVendorRequired)
	}

	resp, err := f.client.UploadContracts(ctx, vendor, files)
	if err != nil {
		f.update(func(s *State) { s.Message = auditapi.DetailOr(err, msgContractsFailed) })
		return "", err
	}
	f.update(func(s *State) {
		s.Step = StepBilling
		s.JobID = resp.JobID
		s.Vendor = strings.TrimSpace(vendor)
		s.Progress = nil
		s.Message = ""
	})
	return resp.JobID, nil
}

// UploadBilling attaches billing exports to the job. Only CSV and Excel
// files are accepted.
func (f *Flow) UploadBilling(ctx context.Context, files []auditapi.File) error {
	jobID := f.State().JobID
	if jobID == "" {
		return fmt.Errorf("%w: upload contracts first", ErrInvalidInput)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: at least one billing file is required", ErrInvalidInput)
	}
	for _, file := range files {
		if !IsBillingFile(file.Name) {
			f.update(func(s *State) { s.Message = msgBillingFileTypes })
			return fmt.Errorf("%w: %s is not a billing export", ErrInvalidInput, file.Name)
		}
	}

	if _, err := f.client.UploadBilling(ctx, jobID, files); err != nil {
		f.update(func(s *State) { s.Message = auditapi.DetailOr(err, msgBillingFailed) })
		return err
	}
	return nil
}

// Start submits the job and blocks while it is polled. On completion the
// flow waits RedirectDelay and then calls OnComplete with the dashboard URL.
func (f *Flow) Start(ctx context.Context) (State, error) {
	jobID := f.State().JobID
	if jobID == "" {
		return f.State(), fmt.Errorf("%w: upload contracts first", ErrInvalidInput)
	}
	f.update(func(s *State) {
		s.Step = StepProcessing
		s.Uploading = true
		s.Stage = StageUpload
		s.Progress = nil
	})

	if _, err := f.client.Submit(ctx, jobID); err != nil {
		f.update(func(s *State) {
			s.Uploading = false
			s.Message = auditapi.DetailOr(err, msgStartFailed)
		})
		return f.State(), err
	}

	poller := *f.Poller
	poller.OnUpdate = func(u Update) {
		f.update(func(s *State) {
			s.Status = u.Status.Status
			if u.Stage != "" {
				s.Stage = u.Stage
			}
			if u.Progress != nil {
				s.Progress = u.Progress
			}
		})
	}
	status, err := poller.Poll(ctx, jobID)
	if err != nil {
		f.update(func(s *State) {
			s.Uploading = false
			if errors.Is(err, ErrPollExhausted) {
				s.Message = msgAuditStillActive
			}
		})
		return f.State(), err
	}

	if status.Status == auditapi.StatusFailed {
		metrics.IncAuditFailed()
		f.update(func(s *State) {
			s.Uploading = false
			s.Progress = nil
			s.Message = firstNonEmpty(status.Message, msgAuditFailed)
		})
		telemetry.Warn("upload.audit_failed", map[string]any{"job_id": jobID, "message": status.Message})
		return f.State(), fmt.Errorf("%w: %s", ErrAuditFailed, firstNonEmpty(status.Message, jobID))
	}

	metrics.IncAuditCompleted()
	f.update(func(s *State) {
		s.Uploading = false
		s.Stage = ""
		s.Progress = nil
		s.Message = msgAuditComplete
	})
	telemetry.Info("upload.audit_completed", map[string]any{"job_id": jobID})

	if f.OnComplete != nil {
		timer := time.NewTimer(f.RedirectDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return f.State(), ctx.Err()
		case <-timer.C:
		}
		f.OnComplete(DashboardURL(jobID))
	}
	return f.State(), nil
}

func (f *Flow) update(mutate func(*State)) {
	f.mu.Lock()
	mutate(&f.state)
	snapshot := f.state
	f.mu.Unlock()
	if f.OnChange != nil {
		f.OnChange(snapshot)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
