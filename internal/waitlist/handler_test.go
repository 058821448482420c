package waitlist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newWaitlistRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(router.Group("/api/v1"))
	return router
}

const signupBody = `{"name":"Jordan","email":"jordan@company.com","company":"Northwind","annualRevenue":"$200M+","role":"COO","contractVolume":"500+","challenge":"Discounts outlive their terms"}`

func TestWaitlistSignup(t *testing.T) {
	router := newWaitlistRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(signupBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID == "" || body.Message != SuccessMessage {
		t.Fatalf("unexpected body %+v", body)
	}

	dup := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(signupBody))
	dup.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, dup)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", resp.Code)
	}
}

func TestWaitlistValidationMessage(t *testing.T) {
	router := newWaitlistRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(`{"name":"Jordan"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Please complete the Email.") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestWaitlistRejectsInvalidEmailThroughBinding(t *testing.T) {
	router := newWaitlistRouter()

	body := strings.Replace(signupBody, "jordan@company.com", "not-an-email", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Please enter a valid email address.") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestWaitlistMalformedBody(t *testing.T) {
	router := newWaitlistRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "invalid request body") {
		t.Fatalf("expected invalid body 400, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestWaitlistOptionsReportSize(t *testing.T) {
	router := newWaitlistRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(signupBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/waitlist/options", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		AnnualRevenue []string `json:"annualRevenue"`
		Role          []string `json:"role"`
		WaitlistSize  *int     `json:"waitlistSize"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.AnnualRevenue) != len(RevenueOptions) || len(body.Role) != len(RoleOptions) {
		t.Fatalf("unexpected options %+v", body)
	}
	if body.WaitlistSize == nil || *body.WaitlistSize != 1 {
		t.Fatalf("expected waitlist size 1, got %v", body.WaitlistSize)
	}
}
