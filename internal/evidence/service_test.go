package evidence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/storage/object/local"
)

// tokenFetcher serves docs only to requests forwarding the owner token.
type tokenFetcher struct {
	owner string
	docs  map[string][]byte
	calls int
}

func (f *tokenFetcher) ContractFile(ctx context.Context, jobID, filename string) (io.ReadCloser, string, error) {
	f.calls++
	if tok, _ := auditapi.BearerTokenFromContext(ctx); tok != f.owner {
		return nil, "", &auditapi.APIError{Status: http.StatusForbidden, Detail: "Not allowed"}
	}
	return io.NopCloser(bytes.NewReader(f.docs[jobID+"/"+filename])), "application/pdf", nil
}

type countingFetcher struct {
	docs  map[string][]byte
	calls int
}

func (f *countingFetcher) ContractFile(ctx context.Context, jobID, filename string) (io.ReadCloser, string, error) {
	f.calls++
	data, ok := f.docs[jobID+"/"+filename]
	if !ok {
		return nil, "", &auditapi.APIError{Status: http.StatusNotFound, Detail: "Contract not found"}
	}
	return io.NopCloser(bytes.NewReader(data)), "application/pdf", nil
}

func TestContractIsCachedAfterFirstFetch(t *testing.T) {
	pdfBytes := buildPDF("Escalator clause")
	api := &countingFetcher{docs: map[string][]byte{"job-1/msa.pdf": pdfBytes}}
	svc := NewService(api, local.New(t.TempDir()))

	for i := 0; i < 2; i++ {
		body, contentType, err := svc.Contract(context.Background(), "org/owner", "job-1", "msa.pdf")
		require.NoError(t, err)
		got, err := io.ReadAll(body)
		require.NoError(t, err)
		body.Close()
		assert.Equal(t, pdfBytes, got)
		assert.Equal(t, "application/pdf", contentType)
	}
	assert.Equal(t, 1, api.calls)
}

func TestCachedContractIsNotServedToAnotherPrincipal(t *testing.T) {
	api := &tokenFetcher{owner: "owner-token", docs: map[string][]byte{"job-1/msa.pdf": []byte("%PDF secret")}}
	svc := NewService(api, local.New(t.TempDir()))

	ownerCtx := auditapi.WithBearerToken(context.Background(), "owner-token")
	body, _, err := svc.Contract(ownerCtx, "org/owner", "job-1", "msa.pdf")
	require.NoError(t, err)
	body.Close()

	otherCtx := auditapi.WithBearerToken(context.Background(), "other-token")
	body, _, err = svc.Contract(otherCtx, "org/other", "job-1", "msa.pdf")
	require.Error(t, err)
	assert.Nil(t, body)
	var apiErr *auditapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, err = svc.PageText(otherCtx, "org/other", "job-1", "msa.pdf", 1)
	require.Error(t, err)
	assert.Equal(t, 3, api.calls)
}

func TestContractWithoutPrincipalSkipsCache(t *testing.T) {
	api := &countingFetcher{docs: map[string][]byte{"job-1/msa.pdf": buildPDF("x")}}
	svc := NewService(api, local.New(t.TempDir()))
	for i := 0; i < 2; i++ {
		body, _, err := svc.Contract(context.Background(), "", "job-1", "msa.pdf")
		require.NoError(t, err)
		body.Close()
	}
	assert.Equal(t, 2, api.calls)
}

func TestHandlerRejectsOperatorDeniedUpstream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := &tokenFetcher{owner: "owner-token", docs: map[string][]byte{"job-1/msa.pdf": []byte("%PDF secret")}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		tok := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		c.Set("userId", strings.TrimSuffix(tok, "-token"))
		c.Set("bearerToken", tok)
	})
	NewHandler(NewService(api, local.New(t.TempDir()))).RegisterRoutes(router.Group("/api/v1"))

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/contracts/msa.pdf", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	first := get("owner-token")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "%PDF secret", first.Body.String())

	second := get("intruder-token")
	assert.Equal(t, http.StatusForbidden, second.Code)
	assert.NotContains(t, second.Body.String(), "secret")
	assert.Equal(t, 2, api.calls)
}

func TestContractWithoutStoreAlwaysFetches(t *testing.T) {
	api := &countingFetcher{docs: map[string][]byte{"job-1/msa.pdf": buildPDF("x")}}
	svc := NewService(api, nil)
	for i := 0; i < 2; i++ {
		body, _, err := svc.Contract(context.Background(), "org/owner", "job-1", "msa.pdf")
		require.NoError(t, err)
		body.Close()
	}
	assert.Equal(t, 2, api.calls)
}

func TestContractValidatesInput(t *testing.T) {
	svc := NewService(&countingFetcher{}, nil)
	_, _, err := svc.Contract(context.Background(), "org/owner", "", "msa.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = svc.Contract(context.Background(), "org/owner", "job-1", "../secrets.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPageTextUsesCache(t *testing.T) {
	api := &countingFetcher{docs: map[string][]byte{"job-1/msa.pdf": buildPDF("Net 30 payment terms", "Annual uplift 5 percent")}}
	svc := NewService(api, local.New(t.TempDir()))

	page, err := svc.PageText(context.Background(), "org/owner", "job-1", "msa.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, Page{JobID: "job-1", Filename: "msa.pdf", Page: 2, Pages: 2, Text: "Annual uplift 5 percent"}, page)

	again, err := svc.PageText(context.Background(), "org/owner", "job-1", "msa.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, page, again)
	assert.Equal(t, 1, api.calls)
}

func TestHandlerServesContractAndPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := &countingFetcher{docs: map[string][]byte{"job-1/msa.pdf": buildPDF("Clause one")}}
	router := gin.New()
	NewHandler(NewService(api, local.New(t.TempDir()))).RegisterRoutes(router.Group("/api/v1"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/contracts/msa.pdf", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF-")))

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/contracts/msa.pdf/pages/1", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Clause one")

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/contracts/msa.pdf/pages/9", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/contracts/missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpstreamErrorsKeepDetail(t *testing.T) {
	api := &countingFetcher{}
	svc := NewService(api, nil)
	_, _, err := svc.Contract(context.Background(), "org/owner", "job-1", "msa.pdf")
	var apiErr *auditapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Contract not found", apiErr.Detail)
}
