package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Client calls a relay endpoint over HTTP, as a browser would.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the relay mounted at endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// Send posts in to the relay and decodes its envelope. Any non-2xx status
// is returned as an error carrying the status and raw body.
func (c *Client) Send(ctx context.Context, in Input) (*Response, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode relay body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := MsgUpstreamGeneric
		var env Response
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return nil, &NotifyError{
			Message: msg,
			Err:     fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}
	return &out, nil
}

// Notify implements the submission flow's notifier over HTTP.
func (c *Client) Notify(ctx context.Context, req domain.CreateSubmissionRequest) error {
	_, err := c.Send(ctx, InputFromRequest(req))
	if err == nil {
		return nil
	}
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return err
	}
	_, msg := Classify(err)
	return &NotifyError{Message: msg, Err: err}
}

// LocalNotifier runs the relay pipeline in-process, skipping the HTTP hop.
type LocalNotifier struct {
	sender Sender
	now    func() time.Time
}

func NewLocalNotifier(sender Sender) *LocalNotifier {
	return &LocalNotifier{sender: sender, now: time.Now}
}

// Notify validates, normalizes and forwards req exactly like the endpoint.
func (n *LocalNotifier) Notify(ctx context.Context, req domain.CreateSubmissionRequest) error {
	if !n.sender.Configured() {
		return &NotifyError{Message: MsgConfigError, Err: ErrNotConfigured}
	}
	in := InputFromRequest(req)
	if err := Validate(in); err != nil {
		return err
	}
	if _, err := n.sender.Forward(ctx, Normalize(in, n.now())); err != nil {
		_, msg := Classify(err)
		return &NotifyError{Message: msg, Err: err}
	}
	return nil
}
