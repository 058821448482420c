package waitlist

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("email already on the waitlist")
)
