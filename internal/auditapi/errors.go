package auditapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned before any request is sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound maps a 404 from the audit service.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the audit service.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("audit api %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("audit api %d", e.Status)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// Banner is the short failure text shown when a fetch fails.
func (e *APIError) Banner() string {
	return fmt.Sprintf("Request failed (%d)", e.Status)
}

// DetailOr returns the service-provided detail for err, or fallback when the
// service sent none.
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Detail) != "" {
		return apiErr.Detail
	}
	return fallback
}

// parseDetail reads FastAPI-style {"detail": ...} bodies. Validation errors
// carry a list; the first msg is used.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
