package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/telemetry"
)

// Service serves dashboard view-models. Each viewer gets its own Loader so a
// request for a different job aborts the viewer's older fetch, while
// requests for the same job share it.
type Service struct {
	Fetcher     SummaryFetcher
	Deriver     *Deriver
	ContractURL func(jobID, filename string) string

	mu      sync.Mutex
	loaders map[string]*Loader
}

// NewService constructs a Service.
func NewService(fetcher SummaryFetcher, deriver *Deriver, contractURL func(jobID, filename string) string) *Service {
	if deriver == nil {
		deriver = NewDeriver(MonthFirst)
	}
	return &Service{
		Fetcher:     fetcher,
		Deriver:     deriver,
		ContractURL: contractURL,
		loaders:     map[string]*Loader{},
	}
}

// Dashboard loads jobID for viewer and assembles the view-model. Without a
// job the sample view-model is returned. On failure the view-model still
// carries the sample data plus the failure banner.
func (s *Service) Dashboard(ctx context.Context, viewer, jobID string) (ViewModel, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return s.Deriver.Assemble(Input{}), nil
	}

	summary, err := s.fetch(ctx, viewer, jobID)
	if err != nil {
		return s.Deriver.Assemble(Input{JobID: jobID, Error: FailureBanner(err)}), err
	}
	return s.Deriver.Assemble(Input{JobID: jobID, Analysis: summary}), nil
}

// Viewer resolves where the contract viewer should open for one evidence
// entry of one discrepancy.
func (s *Service) Viewer(ctx context.Context, viewer, jobID string, discrepancy, evidence int) (ViewerTarget, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return ViewerTarget{}, fmt.Errorf("%w: job is required", ErrInvalidInput)
	}
	summary, err := s.fetch(ctx, viewer, jobID)
	if err != nil {
		return ViewerTarget{}, err
	}
	if discrepancy < 0 || discrepancy >= len(summary.Discrepancies) {
		return ViewerTarget{}, fmt.Errorf("%w: discrepancy %d", ErrNotFound, discrepancy)
	}
	evs := summary.Discrepancies[discrepancy].Evidence
	if evidence < 0 || evidence >= len(evs) {
		return ViewerTarget{}, fmt.Errorf("%w: evidence %d", ErrNotFound, evidence)
	}
	var contractURL func(string) string
	if s.ContractURL != nil {
		contractURL = func(filename string) string { return s.ContractURL(jobID, filename) }
	}
	return ResolveViewerTarget(evs[evidence], summary.Job.Metrics.Documents, contractURL)
}

// Close aborts every fetch in flight.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, l := range s.loaders {
		l.Close()
		delete(s.loaders, key)
	}
}

func (s *Service) fetch(ctx context.Context, viewer, jobID string) (*AnalysisSummary, error) {
	start := metrics.NowMillis()
	metrics.IncSummaryFetch()
	state, err := s.loader(viewer).Load(ctx, jobID)
	metrics.ObserveSummaryFetchMs(metrics.NowMillis() - start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		metrics.IncSummaryFetchFailed()
		telemetry.Warn("dashboard.summary_failed", map[string]any{
			"job_id": jobID,
			"viewer": viewer,
			"error":  err,
		})
		return nil, err
	}
	if state.Summary == nil {
		return nil, fmt.Errorf("%w: empty summary for %s", ErrNotFound, jobID)
	}
	return state.Summary, nil
}

func (s *Service) loader(viewer string) *Loader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaders == nil {
		s.loaders = map[string]*Loader{}
	}
	l, ok := s.loaders[viewer]
	if !ok {
		l = NewLoader(s.Fetcher)
		s.loaders[viewer] = l
	}
	return l
}
