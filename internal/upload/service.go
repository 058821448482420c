package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/storage/object"
	"contractguard-web/internal/shared/telemetry"
)

// Document is an uploaded file held in memory for forwarding.
type Document struct {
	Name string
	Data []byte
}

// StatusView is a job status with the stage board already derived.
type StatusView struct {
	*auditapi.JobStatus
	ActiveStage Stage      `json:"active_stage,omitempty"`
	Progress    *int       `json:"progress_percent,omitempty"`
	Board       []StageRow `json:"board"`
}

// Service forwards uploads to the audit service and keeps an archive copy
// of each file when a store is configured.
type Service struct {
	API    Client
	Store  object.ObjectStore
	Poller *Poller

	limiter *pollLimiter
}

// NewService constructs a Service. store may be nil to disable archiving.
func NewService(api Client, store object.ObjectStore, poller *Poller) *Service {
	if poller == nil {
		poller = NewPoller(api)
	}
	return &Service{
		API:     api,
		Store:   store,
		Poller:  poller,
		limiter: newPollLimiter(pollLimitWindow, nil),
	}
}

// UploadContracts creates a job from the vendor's contracts.
func (s *Service) UploadContracts(ctx context.Context, owner, vendor string, docs []Document) (*auditapi.UploadResponse, error) {
	if strings.TrimSpace(vendor) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, msgVendorRequired)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: at least one contract file is required", ErrInvalidInput)
	}
	resp, err := s.API.UploadContracts(ctx, vendor, toFiles(docs))
	if err != nil {
		return nil, err
	}
	s.archive(ctx, owner, resp.JobID, docs)
	return resp, nil
}

// UploadBilling attaches CSV or Excel billing exports to a job.
func (s *Service) UploadBilling(ctx context.Context, owner, jobID string, docs []Document) (*auditapi.UploadResponse, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: at least one billing file is required", ErrInvalidInput)
	}
	for _, doc := range docs {
		if !IsBillingFile(doc.Name) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, msgBillingFileTypes)
		}
	}
	resp, err := s.API.UploadBilling(ctx, jobID, toFiles(docs))
	if err != nil {
		return nil, err
	}
	s.archive(ctx, owner, jobID, docs)
	return resp, nil
}

// Submit starts processing. With wait set it also polls until the job is
// terminal and returns the final status view.
func (s *Service) Submit(ctx context.Context, jobID string, wait bool) (*auditapi.UploadResponse, *StatusView, error) {
	resp, err := s.API.Submit(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if !wait {
		return resp, nil, nil
	}
	status, err := s.Poller.Poll(ctx, jobID)
	if err != nil {
		return resp, viewOf(status), err
	}
	if status.Status == auditapi.StatusFailed {
		metrics.IncAuditFailed()
	} else {
		metrics.IncAuditCompleted()
	}
	return resp, viewOf(status), nil
}

// Status reads the job state once. Each caller may poll a job at most once
// per limiter window.
func (s *Service) Status(ctx context.Context, caller, jobID string) (*StatusView, error) {
	if !s.limiter.Allow(caller, jobID) {
		return nil, ErrRateLimited
	}
	metrics.IncStatusPoll()
	status, err := s.API.Status(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return viewOf(status), nil
}

// RetryAfterSeconds is the Retry-After hint for rate-limited polls.
func (s *Service) RetryAfterSeconds() int {
	return s.limiter.RetryAfterSeconds()
}

func (s *Service) archive(ctx context.Context, owner, jobID string, docs []Document) {
	if s.Store == nil {
		return
	}
	for _, doc := range docs {
		key, size, mimeType, err := s.Store.Save(ctx, owner+"/"+jobID, doc.Name, bytes.NewReader(doc.Data))
		if err != nil {
			telemetry.Warn("upload.archive_failed", map[string]any{
				"job_id": jobID,
				"file":   doc.Name,
				"error":  err.Error(),
			})
			continue
		}
		telemetry.Info("upload.archived", map[string]any{
			"job_id":     jobID,
			"key":        key,
			"size_bytes": size,
			"mime_type":  mimeType,
		})
	}
}

func toFiles(docs []Document) []auditapi.File {
	files := make([]auditapi.File, 0, len(docs))
	for _, doc := range docs {
		files = append(files, auditapi.File{Name: doc.Name, Reader: bytes.NewReader(doc.Data)})
	}
	return files
}

func viewOf(status *auditapi.JobStatus) *StatusView {
	if status == nil {
		return nil
	}
	view := &StatusView{JobStatus: status}
	stage, ok := ActiveStage(status.Stages)
	if ok && !status.Terminal() {
		view.ActiveStage = stage
	}
	progress := status.Metrics.ReconciliationProgress
	if progress != nil && view.ActiveStage == StageReconciliation {
		pct := ProgressPercent(progress)
		view.Progress = &pct
	}
	view.Board = Board(view.ActiveStage, progress)
	if status.Status == auditapi.StatusCompleted {
		for i := range view.Board {
			view.Board[i].Label = LabelComplete
		}
	}
	return view
}
