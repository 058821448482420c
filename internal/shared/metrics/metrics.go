package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	summaryFetchTotal   atomic.Uint64
	summaryFetchFailed  atomic.Uint64
	statusPollTotal     atomic.Uint64
	auditCompletedTotal atomic.Uint64
	auditFailedTotal    atomic.Uint64
	chatRequestsTotal   atomic.Uint64
	chatFailedTotal     atomic.Uint64
	waitlistSignups     atomic.Uint64

	summaryFetchDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000})
)

// IncSummaryFetch increments the summary fetch counter.
func IncSummaryFetch() {
	summaryFetchTotal.Add(1)
}

// IncSummaryFetchFailed increments the failed summary fetch counter.
func IncSummaryFetchFailed() {
	summaryFetchFailed.Add(1)
}

// IncStatusPoll counts one upstream status poll.
func IncStatusPoll() {
	statusPollTotal.Add(1)
}

// IncAuditCompleted increments the completed audit counter.
func IncAuditCompleted() {
	auditCompletedTotal.Add(1)
}

// IncAuditFailed increments the failed audit counter.
func IncAuditFailed() {
	auditFailedTotal.Add(1)
}

// IncChatRequest counts a relayed chat question.
func IncChatRequest() {
	chatRequestsTotal.Add(1)
}

// IncChatFailed counts a chat question answered with the fallback reply.
func IncChatFailed() {
	chatFailedTotal.Add(1)
}

// IncWaitlistSignup counts a stored waitlist request.
func IncWaitlistSignup() {
	waitlistSignups.Add(1)
}

// ObserveSummaryFetchMs records a summary fetch duration in milliseconds.
func ObserveSummaryFetchMs(value float64) {
	if value < 0 {
		value = 0
	}
	summaryFetchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "summary_fetch_total", "Analysis summaries fetched from the audit API", summaryFetchTotal.Load())
	writeCounter(&buf, "summary_fetch_failed_total", "Analysis summary fetches that failed", summaryFetchFailed.Load())
	writeCounter(&buf, "status_poll_total", "Upload status polls sent to the audit API", statusPollTotal.Load())
	writeCounter(&buf, "audit_completed_total", "Audits observed reaching completed", auditCompletedTotal.Load())
	writeCounter(&buf, "audit_failed_total", "Audits observed reaching failed", auditFailedTotal.Load())
	writeCounter(&buf, "chat_requests_total", "Chat questions relayed", chatRequestsTotal.Load())
	writeCounter(&buf, "chat_failed_total", "Chat questions answered with the fallback reply", chatFailedTotal.Load())
	writeCounter(&buf, "waitlist_signups_total", "Waitlist requests stored", waitlistSignups.Load())
	writeHistogram(&buf, "summary_fetch_duration_ms", "Summary fetch duration in milliseconds", summaryFetchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
