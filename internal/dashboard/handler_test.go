package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/server/middleware"
)

type stubFetcher struct {
	summaries map[string]*AnalysisSummary
	err       error
	gotToken  string
}

func (s *stubFetcher) Summary(ctx context.Context, jobID string) (*AnalysisSummary, error) {
	s.gotToken, _ = auditapi.BearerTokenFromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	summary, ok := s.summaries[jobID]
	if !ok {
		return nil, &auditapi.APIError{Status: http.StatusNotFound, Detail: "Job not found"}
	}
	return summary, nil
}

func newTestRouter(fetcher SummaryFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(fetcher, NewDeriver(MonthFirst), func(jobID, filename string) string {
		return "http://audit/jobs/" + jobID + "/contracts/" + filename
	})
	router := gin.New()
	router.Use(middleware.Auth(nil))
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestDashboardWithoutJobServesSamples(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var vm ViewModel
	if err := json.Unmarshal(resp.Body.Bytes(), &vm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !vm.Demo || len(vm.Alerts) != len(DemoAlerts) {
		t.Fatalf("expected sample view-model, got %+v", vm)
	}
}

func TestDashboardRendersLoadedJob(t *testing.T) {
	page := 2
	fetcher := &stubFetcher{summaries: map[string]*AnalysisSummary{
		"job-1": {
			Job: auditapi.JobStatus{JobID: "job-1", Status: auditapi.StatusCompleted, Metrics: auditapi.JobMetrics{
				Currency:  "USD",
				Documents: []auditapi.ExtractedDocument{{Filename: "msa.pdf"}},
			}},
			Discrepancies: []Discrepancy{{
				Customer: "Acme",
				Issue:    "Missed uplift",
				Value:    ptr(1200),
				Evidence: []Evidence{{Type: "contract_clause", File: "msa.pdf", Page: &page}},
			}},
		},
	}}
	router := newTestRouter(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?job=job-1", nil)
	req.Header.Set("Authorization", "Bearer upstream")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var vm ViewModel
	if err := json.Unmarshal(resp.Body.Bytes(), &vm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vm.Demo || vm.JobID != "job-1" || vm.Currency != "USD" {
		t.Fatalf("unexpected view-model header %+v", vm)
	}
	if len(vm.Alerts) != 1 || vm.Alerts[0].Value != "$1,200" {
		t.Fatalf("unexpected alerts %+v", vm.Alerts)
	}
	if fetcher.gotToken != "upstream" {
		t.Fatalf("expected bearer token forwarded, got %q", fetcher.gotToken)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/job-1/viewer?discrepancy=0&evidence=0", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from viewer, got %d: %s", resp.Code, resp.Body.String())
	}
	var target ViewerTarget
	if err := json.Unmarshal(resp.Body.Bytes(), &target); err != nil {
		t.Fatalf("decode viewer: %v", err)
	}
	if target.Page != 2 || target.URL != "http://audit/jobs/job-1/contracts/msa.pdf" {
		t.Fatalf("unexpected viewer target %+v", target)
	}
}

func TestDashboardUpstreamFailureReturnsBanner(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: &auditapi.APIError{Status: http.StatusInternalServerError}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?job=job-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string    `json:"code"`
			Message string    `json:"message"`
			Details ViewModel `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "upstream_error" || body.Error.Message != "Request failed (500)" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if !body.Error.Details.Demo || body.Error.Details.Error != "Request failed (500)" {
		t.Fatalf("expected sample view-model with banner, got %+v", body.Error.Details)
	}
}

func TestDashboardUnknownJobIsNotFound(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?job=missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestViewerRejectsInvoiceEvidence(t *testing.T) {
	fetcher := &stubFetcher{summaries: map[string]*AnalysisSummary{
		"job-1": {Discrepancies: []Discrepancy{{Evidence: []Evidence{{Type: "invoice_line", File: "billing.csv"}}}}},
	}}
	router := newTestRouter(fetcher)

	for path, want := range map[string]int{
		"/api/v1/dashboard/job-1/viewer?discrepancy=0&evidence=0": http.StatusUnprocessableEntity,
		"/api/v1/dashboard/job-1/viewer?discrepancy=3":            http.StatusNotFound,
		"/api/v1/dashboard/job-1/viewer?discrepancy=x":            http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.Code)
		}
	}
}

func TestViewerKeySeparatesClientSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := func(session string) string {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		if session != "" {
			c.Request.Header.Set(SessionHeader, session)
		}
		c.Set("userId", "dev-user")
		return viewerKey(c)
	}
	if got := key(""); got != "dev-user" {
		t.Fatalf("expected dev-user, got %q", got)
	}
	if key("tab-1") == key("tab-2") {
		t.Fatalf("sessions share a loader key")
	}
}
