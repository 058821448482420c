package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/metrics"
	"contractguard-web/internal/shared/telemetry"
)

const defaultPollInterval = 2500 * time.Millisecond

// StatusFetcher reads the processing state of a job.
type StatusFetcher interface {
	Status(ctx context.Context, jobID string) (*auditapi.JobStatus, error)
}

// Update is what the poller observed on one successful tick.
type Update struct {
	Status   *auditapi.JobStatus
	Stage    Stage
	Progress *auditapi.Progress
}

// Poller polls a job until it reaches a terminal status. Polling stops on a
// terminal status, when MaxAttempts ticks have run, when Timeout elapses or
// when the context is cancelled. Failed status requests skip the tick.
type Poller struct {
	Fetcher StatusFetcher
	// Interval is the delay after the first tick.
	Interval time.Duration
	// MaxInterval caps the delay. When it exceeds Interval the delay grows
	// exponentially; otherwise it stays at Interval.
	MaxInterval time.Duration
	MaxAttempts uint64
	Timeout     time.Duration
	OnUpdate    func(Update)
}

// NewPoller constructs a Poller with the default interval and no limits.
func NewPoller(fetcher StatusFetcher) *Poller {
	return &Poller{Fetcher: fetcher, Interval: defaultPollInterval}
}

var errNotTerminal = errors.New("job not terminal")

// Poll blocks until jobID completes or fails and returns the last status
// seen. ErrPollExhausted is returned when the limits stop polling first.
func (p *Poller) Poll(ctx context.Context, jobID string) (*auditapi.JobStatus, error) {
	var last *auditapi.JobStatus
	attempts := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		metrics.IncStatusPoll()
		status, err := p.Fetcher.Status(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			telemetry.Warn("upload.status_poll_failed", map[string]any{
				"job_id":  jobID,
				"attempt": attempts,
				"error":   err.Error(),
			})
			return retry.RetryableError(fmt.Errorf("%w: %v", errNotTerminal, err))
		}
		last = status
		if p.OnUpdate != nil {
			update := Update{Status: status, Progress: status.Metrics.ReconciliationProgress}
			if stage, ok := ActiveStage(status.Stages); ok {
				update.Stage = stage
			}
			p.OnUpdate(update)
		}
		if status.Terminal() {
			return nil
		}
		return retry.RetryableError(errNotTerminal)
	})
	switch {
	case err == nil:
		return last, nil
	case ctx.Err() != nil:
		return last, ctx.Err()
	case errors.Is(err, errNotTerminal):
		telemetry.Warn("upload.poll_exhausted", map[string]any{"job_id": jobID, "attempts": attempts})
		return last, fmt.Errorf("%w: job %s after %d attempts", ErrPollExhausted, jobID, attempts)
	default:
		return last, err
	}
}

func (p *Poller) backoff() retry.Backoff {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var b retry.Backoff
	if p.MaxInterval > interval {
		b = retry.WithCappedDuration(p.MaxInterval, retry.NewExponential(interval))
	} else {
		b = retry.NewConstant(interval)
	}
	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts-1, b)
	}
	if p.Timeout > 0 {
		b = retry.WithMaxDuration(p.Timeout, b)
	}
	return b
}
