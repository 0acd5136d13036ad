package checkin

import "errors"

var (
	ErrInvalidBranchPattern = errors.New("invalid branch terminal pattern")
	ErrUnknownBranch        = errors.New("unknown branch")
	ErrMalformedRecord      = errors.New("malformed check-in record")
	ErrSourceUnavailable    = errors.New("check-in source unavailable")
)
