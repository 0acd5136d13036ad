package leave

import "errors"

var (
	ErrInvalidLeavePeriod = errors.New("leave period ends before it starts")
	ErrMalformedRecord    = errors.New("malformed leave record")
	ErrSourceUnavailable  = errors.New("leave source unavailable")
)
