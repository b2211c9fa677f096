package keap

import (
	"errors"
	"fmt"
)

// Throttle carries the rate-limit metadata Keap attaches to responses. The
// product throttle and tenant throttle are short-window (per-minute) limits;
// the product quota is the daily cap.
type Throttle struct {
	ProductThrottleLimit     int
	ProductThrottleAvailable int
	TenantThrottleLimit      int
	TenantThrottleAvailable  int
	QuotaLimit               int
	QuotaAvailable           int
	QuotaUsed                int

	// HasProductThrottle/HasTenantThrottle track whether the headers were
	// present at all, since "0" and "missing" mean different things.
	HasProductThrottle bool
	HasTenantThrottle  bool
	HasQuota           bool
}

// HasCapacity reports whether every tracked short window still has requests
// available.
func (t Throttle) HasCapacity() bool {
	return t.ProductThrottleAvailable > 0 && t.TenantThrottleAvailable > 0
}

// HasThrottleMetadata reports whether the response carried any short-window
// throttle headers at all. A 429 without them gives nothing to schedule
// against.
func (t Throttle) HasThrottleMetadata() bool {
	return t.HasProductThrottle || t.HasTenantThrottle
}

// RateLimitError is returned on HTTP 429 when the short-window throttle is
// hit. It is retryable after the throttle window resets.
type RateLimitError struct {
	Message  string
	Throttle Throttle
}

func (e *RateLimitError) Error() string { return e.Message }

// QuotaExhaustedError is returned when the daily API quota is used up.
// Waiting seconds will not help, so it is never retried.
type QuotaExhaustedError struct {
	Message string
}

func (e *QuotaExhaustedError) Error() string { return e.Message }

// ServerError is returned on 5xx responses. Retryable.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// NotFoundError is returned on 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError is returned on 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError is returned on 401/403 or when no API key is configured.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// APIError is the generic fallback for upstream failures that fit no more
// specific kind.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsRetryable reports whether err is a transient upstream condition (rate
// limit or server error) worth retrying. Quota exhaustion is deliberately
// excluded: it is daily-scoped.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	var srv *ServerError
	return errors.As(err, &rl) || errors.As(err, &srv)
}

// IsQuotaExhausted reports whether err is the daily quota cap.
func IsQuotaExhausted(err error) bool {
	var qe *QuotaExhaustedError
	return errors.As(err, &qe)
}

// IsNotFound reports whether err is a missing upstream resource.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ThrottleOf extracts rate-limit metadata from err, if any.
func ThrottleOf(err error) (Throttle, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Throttle, true
	}
	return Throttle{}, false
}

// ErrorKind returns a stable name for an error's taxonomy class, used by the
// error ledger.
func ErrorKind(err error) string {
	switch {
	case IsQuotaExhausted(err):
		return "QuotaExhaustedError"
	case IsNotFound(err):
		return "NotFoundError"
	default:
		var rl *RateLimitError
		var srv *ServerError
		var val *ValidationError
		var auth *AuthError
		switch {
		case errors.As(err, &rl):
			return "RateLimitError"
		case errors.As(err, &srv):
			return "ServerError"
		case errors.As(err, &val):
			return "ValidationError"
		case errors.As(err, &auth):
			return "AuthError"
		}
		return fmt.Sprintf("%T", err)
	}
}
