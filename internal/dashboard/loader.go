package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"contractguard-web/internal/auditapi"
)

const loadFailedFallback = "Failed to load job data."

// SummaryFetcher retrieves the analysis payload for a job.
type SummaryFetcher interface {
	Summary(ctx context.Context, jobID string) (*AnalysisSummary, error)
}

// LoadState is the loader's view of the current job.
type LoadState struct {
	JobID   string
	Summary *AnalysisSummary
	Loading bool
	Err     string
}

// Loader fetches summaries for one viewer. Loading a different job or
// closing the loader cancels the fetch still in flight, so a stale response
// can never overwrite a newer one. Loads of the job already in flight share
// that fetch.
type Loader struct {
	fetcher SummaryFetcher

	mu     sync.Mutex
	seq    uint64
	flight *flight
	state  LoadState
}

// flight is one summary fetch and the callers waiting on it.
type flight struct {
	jobID   string
	seq     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	waiters int

	state LoadState
	err   error
}

// NewLoader constructs a Loader.
func NewLoader(fetcher SummaryFetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches jobID. A blank jobID clears the state. When the load is
// superseded or the loader is closed the error is context.Canceled and the
// state is left to the newer load. A caller whose ctx ends stops waiting;
// the fetch is cancelled once no caller is left.
func (l *Loader) Load(ctx context.Context, jobID string) (LoadState, error) {
	jobID = strings.TrimSpace(jobID)

	l.mu.Lock()
	if f := l.flight; jobID != "" && f != nil && f.jobID == jobID {
		f.waiters++
		l.mu.Unlock()
		return l.wait(ctx, f)
	}
	l.abortLocked()
	l.seq++
	if jobID == "" {
		l.state = LoadState{}
		l.mu.Unlock()
		return LoadState{}, nil
	}
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &flight{jobID: jobID, seq: l.seq, cancel: cancel, done: make(chan struct{}), waiters: 1}
	l.flight = f
	if l.state.JobID != jobID {
		l.state.Summary = nil
	}
	l.state.JobID = jobID
	l.state.Loading = true
	l.state.Err = ""
	l.mu.Unlock()

	go l.run(fetchCtx, f)
	return l.wait(ctx, f)
}

func (l *Loader) run(ctx context.Context, f *flight) {
	summary, err := l.fetcher.Summary(ctx, f.jobID)

	l.mu.Lock()
	defer l.mu.Unlock()
	defer close(f.done)
	f.cancel()
	if l.flight == f {
		l.flight = nil
	}
	if f.seq != l.seq {
		f.state, f.err = l.state, context.Canceled
		return
	}
	l.state.Loading = false
	switch {
	case err == nil:
		l.state.Summary = summary
	case !errors.Is(err, context.Canceled):
		l.state.Err = FailureBanner(err)
	}
	f.state, f.err = l.state, err
}

func (l *Loader) wait(ctx context.Context, f *flight) (LoadState, error) {
	select {
	case <-f.done:
		return f.state, f.err
	case <-ctx.Done():
	}
	l.mu.Lock()
	f.waiters--
	if f.waiters == 0 && l.flight == f {
		l.abortLocked()
	}
	state := l.state
	l.mu.Unlock()
	return state, ctx.Err()
}

// State returns a snapshot of the current state.
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close cancels any fetch in flight.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.abortLocked()
	l.seq++
	l.state.Loading = false
}

func (l *Loader) abortLocked() {
	if l.flight != nil {
		l.flight.cancel()
		l.flight = nil
	}
}

// FailureBanner is the user-facing text for a failed summary fetch.
func FailureBanner(err error) string {
	var apiErr *auditapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Banner()
	}
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return loadFailedFallback
	}
	return err.Error()
}
