package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// Caller-facing messages.
const (
	MsgMethodNotAllowed = "Method not allowed. Only POST requests are accepted."
	MsgConfigError      = "Server configuration error. Please contact administrator."
	MsgInvalidBody      = "Invalid request body."
	MsgMissingFields    = "Missing required fields. Please provide name, email, purpose, and platform_link."
	MsgInvalidEmail     = "Invalid email format."
	MsgInvalidURL       = "Invalid platform URL format."
	MsgSuccess          = "Application submitted successfully to admin panel"

	MsgUpstreamAuth        = "Authentication failed with admin panel"
	MsgUpstreamForbidden   = "Access denied by admin panel"
	MsgUpstreamRateLimited = "Too many requests. Please try again later"
	MsgUpstreamServerError = "Admin panel server error"
	MsgUpstreamGeneric     = "Failed to submit to admin panel"

	MsgTimeout     = "Request timeout. Please try again"
	MsgUnavailable = "Admin panel is currently unavailable"
	MsgConnect     = "Failed to connect to admin panel"
	MsgInternal    = "Internal server error occurred"
)

// ErrNotConfigured is returned when the admin API URL or key is missing.
var ErrNotConfigured = errors.New("relay: admin api url or key not configured")

// RequestError is a client input failure; it never reaches the upstream.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// PublicMessage is the text safe to show the caller.
func (e *RequestError) PublicMessage() string { return e.Message }

// NotifyError is a failed hand-off to the relay. Message is the caller-facing
// text; Err keeps the full cause for server-side logs.
type NotifyError struct {
	Message string
	Err     error
}

func (e *NotifyError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *NotifyError) Unwrap() error { return e.Err }

// PublicMessage is the text safe to show the caller.
func (e *NotifyError) PublicMessage() string { return e.Message }

// UpstreamError is a non-2xx answer from the admin panel.
type UpstreamError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("admin api returned %d %s", e.StatusCode, e.StatusText)
}

// UpstreamMessage picks the caller-facing message for an upstream status.
func UpstreamMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return MsgUpstreamAuth
	case http.StatusForbidden:
		return MsgUpstreamForbidden
	case http.StatusTooManyRequests:
		return MsgUpstreamRateLimited
	case http.StatusInternalServerError:
		return MsgUpstreamServerError
	default:
		return MsgUpstreamGeneric
	}
}

// Classify maps a forwarding failure to the status and message returned to
// the caller. Upstream failures mirror the upstream status.
func Classify(err error) (int, string) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode, UpstreamMessage(upErr.StatusCode)
	}

	if errors.Is(err, ErrNotConfigured) {
		return http.StatusInternalServerError, MsgConfigError
	}

	if isTimeout(err) {
		return http.StatusRequestTimeout, MsgTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return http.StatusServiceUnavailable, MsgUnavailable
	}

	var urlErr *url.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return http.StatusBadGateway, MsgConnect
	}

	return http.StatusInternalServerError, MsgInternal
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
