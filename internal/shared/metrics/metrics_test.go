package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncSummaryFetch()
	IncWaitlistSignup()
	ObserveSummaryFetchMs(120)
	ObserveSummaryFetchMs(-5)

	out := Render()
	for _, want := range []string{
		"# TYPE summary_fetch_total counter",
		"# TYPE waitlist_signups_total counter",
		"# TYPE summary_fetch_duration_ms histogram",
		`summary_fetch_duration_ms_bucket{le="+Inf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)
	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}
}
