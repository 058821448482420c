package evidence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"contractguard-web/internal/shared/storage/object"
	"contractguard-web/internal/shared/telemetry"
	"contractguard-web/internal/shared/util"
)

const (
	maxContractBytes = 50 << 20
	cachePrefix      = "contracts"
)

var ErrInvalidInput = errors.New("invalid input")

// ContractFetcher downloads a contract document from the audit service.
type ContractFetcher interface {
	ContractFile(ctx context.Context, jobID, filename string) (io.ReadCloser, string, error)
}

// Page is the extracted text of one contract page.
type Page struct {
	JobID    string `json:"jobId"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Pages    int    `json:"pages"`
	Text     string `json:"text"`
}

// Service serves contract documents behind the evidence viewer. Documents
// are cached in the object store on first access, scoped to the principal
// the audit service authorized, so one operator's cache never answers for
// another.
type Service struct {
	API   ContractFetcher
	Store object.ObjectStore
}

// NewService constructs a Service. A nil store disables caching.
func NewService(api ContractFetcher, store object.ObjectStore) *Service {
	return &Service{API: api, Store: store}
}

// Contract returns the document body and its content type for principal.
// An empty principal bypasses the cache.
func (s *Service) Contract(ctx context.Context, principal, jobID, filename string) (io.ReadCloser, string, error) {
	key, err := cacheKey(principal, jobID, filename)
	if err != nil {
		return nil, "", err
	}
	contentType := contentTypeFor(filename)

	if s.Store != nil && principal != "" {
		body, err := s.Store.Open(ctx, key)
		if err == nil {
			return body, contentType, nil
		}
		if !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("evidence.cache_read_failed", map[string]any{"key": key, "error": err.Error()})
		}
	}

	data, upstreamType, err := s.fetch(ctx, jobID, filename)
	if err != nil {
		return nil, "", err
	}
	if upstreamType != "" && contentType == "application/octet-stream" {
		contentType = upstreamType
	}
	if principal != "" {
		s.cache(ctx, key, contentType, data)
	}
	return io.NopCloser(bytes.NewReader(data)), contentType, nil
}

// PageText extracts the text of one page. Extracted text is cached next to
// the document.
func (s *Service) PageText(ctx context.Context, principal, jobID, filename string, page int) (Page, error) {
	key, err := cacheKey(principal, jobID, filename)
	if err != nil {
		return Page{}, err
	}
	out := Page{JobID: jobID, Filename: filename, Page: page}

	body, _, err := s.Contract(ctx, principal, jobID, filename)
	if err != nil {
		return Page{}, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxContractBytes+1))
	if err != nil {
		return Page{}, fmt.Errorf("read contract %s: %w", filename, err)
	}

	textKey := fmt.Sprintf("%s.page-%d.txt", key, page)
	if text, ok := s.cachedText(ctx, principal, textKey); ok {
		pages, err := PageCount(data)
		if err == nil {
			out.Pages = pages
			out.Text = text
			return out, nil
		}
	}

	text, pages, err := ExtractPageText(data, page)
	out.Pages = pages
	if err != nil {
		return out, err
	}
	out.Text = text
	if principal != "" {
		s.cache(ctx, textKey, "text/plain; charset=utf-8", []byte(text))
	}
	return out, nil
}

func (s *Service) fetch(ctx context.Context, jobID, filename string) ([]byte, string, error) {
	body, contentType, err := s.API.ContractFile(ctx, jobID, filename)
	if err != nil {
		return nil, "", err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxContractBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download contract %s: %w", filename, err)
	}
	if len(data) > maxContractBytes {
		return nil, "", fmt.Errorf("%w: contract %s exceeds %d MB", ErrInvalidInput, filename, maxContractBytes>>20)
	}
	return data, contentType, nil
}

func (s *Service) cache(ctx context.Context, key, contentType string, data []byte) {
	if s.Store == nil {
		return
	}
	if _, err := s.Store.SaveWithKey(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		telemetry.Warn("evidence.cache_write_failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (s *Service) cachedText(ctx context.Context, principal, key string) (string, bool) {
	if s.Store == nil || principal == "" {
		return "", false
	}
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return "", false
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func cacheKey(principal, jobID, filename string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", fmt.Errorf("%w: job is required", ErrInvalidInput)
	}
	name, err := util.SanitizeFileName(filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return path.Join(cachePrefix, util.HashUserKey(principal), util.HashUserKey(jobID), name), nil
}

func contentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
