package upload

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAuditFailed   = errors.New("audit failed")
	ErrPollExhausted = errors.New("audit still running after polling stopped")
	ErrRateLimited   = errors.New("status polled too frequently")
)
