package auditapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 64 << 10

type tokenKey struct{}

// WithBearerToken attaches the caller's token to ctx so every request made
// with it is authorized as that caller.
func WithBearerToken(ctx context.Context, token string) context.Context {
	if strings.TrimSpace(token) == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerTokenFromContext returns the token set by WithBearerToken.
func BearerTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// File is one part of a multipart upload.
type File struct {
	Name   string
	Reader io.Reader
}

// Client talks to the audit service at API_BASE.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client. A zero timeout leaves requests bounded only
// by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ContractURL is the direct URL of a contract PDF for the evidence viewer.
func (c *Client) ContractURL(jobID, filename string) string {
	return fmt.Sprintf("%s/jobs/%s/contracts/%s", c.baseURL, url.PathEscape(jobID), url.PathEscape(filename))
}

// Summary fetches the analysis payload for a job.
func (c *Client) Summary(ctx context.Context, jobID string) (*AnalysisSummary, error) {
	if err := requireJob(jobID); err != nil {
		return nil, err
	}
	var out AnalysisSummary
	if err := c.doJSON(ctx, http.MethodGet, "/analysis/"+url.PathEscape(jobID)+"/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat asks the assistant a question about a job.
func (c *Client) Chat(ctx context.Context, jobID, question string) (*ChatResponse, error) {
	if err := requireJob(jobID); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	payload, err := json.Marshal(ChatRequest{Question: question})
	if err != nil {
		return nil, err
	}
	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/analysis/"+url.PathEscape(jobID)+"/chat", jsonBody(payload), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadContracts creates a job from the vendor's contract documents.
func (c *Client) UploadContracts(ctx context.Context, vendorName string, files []File) (*UploadResponse, error) {
	if strings.TrimSpace(vendorName) == "" {
		return nil, fmt.Errorf("%w: vendor_name is required", ErrInvalidInput)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one contract file is required", ErrInvalidInput)
	}
	body, err := multipartBody(map[string]string{"vendor_name": strings.TrimSpace(vendorName)}, files)
	if err != nil {
		return nil, err
	}
	var out UploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/contracts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadBilling attaches billing exports to a job.
func (c *Client) UploadBilling(ctx context.Context, jobID string, files []File) (*UploadResponse, error) {
	if err := requireJob(jobID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one billing file is required", ErrInvalidInput)
	}
	body, err := multipartBody(nil, files)
	if err != nil {
		return nil, err
	}
	var out UploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/"+url.PathEscape(jobID)+"/billing", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit starts processing for a job.
func (c *Client) Submit(ctx context.Context, jobID string) (*UploadResponse, error) {
	if err := requireJob(jobID); err != nil {
		return nil, err
	}
	var out UploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/"+url.PathEscape(jobID)+"/submit", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the current processing state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	if err := requireJob(jobID); err != nil {
		return nil, err
	}
	var out JobStatus
	if err := c.doJSON(ctx, http.MethodGet, "/upload/"+url.PathEscape(jobID)+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContractFile streams a contract document. Callers must close the body.
func (c *Client) ContractFile(ctx context.Context, jobID, filename string) (io.ReadCloser, string, error) {
	if err := requireJob(jobID); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(filename) == "" {
		return nil, "", fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	path := "/jobs/" + url.PathEscape(jobID) + "/contracts/" + url.PathEscape(filename)
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return resp.Body, contentType, nil
}

type requestBody struct {
	reader      io.Reader
	contentType string
}

func jsonBody(payload []byte) *requestBody {
	return &requestBody{reader: bytes.NewReader(payload), contentType: "application/json"}
}

func multipartBody(fields map[string]string, files []File) (*requestBody, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		if f.Reader == nil {
			return nil, fmt.Errorf("%w: file %q has no content", ErrInvalidInput, f.Name)
		}
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &requestBody{reader: &buf, contentType: writer.FormDataContentType()}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body *requestBody, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// send performs the request and returns the response only for 2xx statuses.
func (c *Client) send(ctx context.Context, method, path string, body *requestBody) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	if token, ok := BearerTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Detail: parseDetail(raw)}
	}
	return resp, nil
}

func requireJob(jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	return nil
}
