package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/logging"
)

const (
	DefaultTimeout  = 10 * time.Second
	UserAgent       = "VinNesia-DomainForm/1.0"
	APIKeyHeader    = "x-api-key"
	maxResponseBody = 1 << 20
)

// unparseableAck stands in for an upstream body that is not JSON.
func unparseableAck() map[string]any {
	return map[string]any{"message": "Response received but not parseable"}
}

// Forwarder posts normalized records to the admin panel API
type Forwarder struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	metrics *Metrics
}

// NewForwarder creates a forwarder from the relay settings. A positive
// RateLimit caps outbound calls per second.
func NewForwarder(cfg config.RelayConfig) *Forwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	f := &Forwarder{
		url:     strings.TrimSpace(cfg.AdminAPIURL),
		apiKey:  strings.TrimSpace(cfg.AdminAPIKey),
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
		metrics: &Metrics{},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return f
}

// Configured reports whether both the URL and key are present.
func (f *Forwarder) Configured() bool {
	return f.url != "" && f.apiKey != ""
}

// Presence reports which upstream settings are present.
func (f *Forwarder) Presence() (hasURL, hasKey bool) {
	return f.url != "", f.apiKey != ""
}

// Metrics returns the forwarder's call counters.
func (f *Forwarder) Metrics() *Metrics {
	return f.metrics
}

// Forward sends rec upstream and returns the decoded acknowledgement.
// A non-2xx answer yields *UpstreamError; an empty or non-JSON body on a
// 2xx answer is a degraded success, not an error.
func (f *Forwarder) Forward(ctx context.Context, rec Record) (any, error) {
	logger := logging.New(ctx)
	if !f.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.metrics.record(time.Since(start), false, true)
			return nil, fmt.Errorf("rate limit wait: %w: %v", context.DeadlineExceeded, err)
		}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		logger.LogError("relay.forward", err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, f.apiKey)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.record(time.Since(start), false, true)
		return nil, fmt.Errorf("admin api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	f.metrics.record(time.Since(start), resp.StatusCode < 200 || resp.StatusCode > 299, false)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	if readErr != nil {
		logger.LogWarn("relay.forward", "failed to read admin api response", "error", readErr.Error())
		return unparseableAck(), nil
	}
	return decodeAck(logger, body), nil
}

func decodeAck(logger *logging.Logger, body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		logger.LogWarn("relay.forward", "failed to parse admin api response", "error", err.Error())
		return unparseableAck()
	}
	return out
}
