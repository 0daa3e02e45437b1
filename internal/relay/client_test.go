package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

func sampleRequest() domain.CreateSubmissionRequest {
	return domain.CreateSubmissionRequest{
		Input:  domain.Input{Name: "Ana", Email: "ana@x.com", Purpose: "blog", PlatformLink: "https://x.com"},
		UserID: "uid-1",
	}
}

func relayServer(t *testing.T, adminURL string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(adminURL, false, time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SendThroughRelay(t *testing.T) {
	up := okUpstream(t)
	srv := relayServer(t, up.URL)

	resp, err := NewClient(srv.URL+Path, time.Second).Send(context.Background(), InputFromRequest(sampleRequest()))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.NotEmpty(t, resp.Data.SubmittedAt)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(*up.body.Load(), &sent))
	assert.Equal(t, "uid-1", sent["user_id"])
}

func TestClient_NotifyReportsRelayFailure(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := relayServer(t, up.URL)

	err := NewClient(srv.URL+Path, time.Second).Notify(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")

	var notifyErr *NotifyError
	require.True(t, errors.As(err, &notifyErr))
	assert.Equal(t, MsgUpstreamRateLimited, notifyErr.PublicMessage())
}

func TestClient_NotifyUnreachableRelay(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + Path
	srv.Close()

	err := NewClient(endpoint, time.Second).Notify(context.Background(), sampleRequest())

	var notifyErr *NotifyError
	require.True(t, errors.As(err, &notifyErr))
	assert.Equal(t, MsgUnavailable, notifyErr.PublicMessage())
	assert.NotContains(t, notifyErr.PublicMessage(), "127.0.0.1")
	assert.Contains(t, err.Error(), "127.0.0.1")
}

func TestLocalNotifier(t *testing.T) {
	t.Run("forwards", func(t *testing.T) {
		up := okUpstream(t)
		fwd := NewForwarder(config.RelayConfig{AdminAPIURL: up.URL, AdminAPIKey: "k", Timeout: time.Second})

		require.NoError(t, NewLocalNotifier(fwd).Notify(context.Background(), sampleRequest()))
		assert.Equal(t, int32(1), up.hits.Load())
	})

	t.Run("unconfigured", func(t *testing.T) {
		err := NewLocalNotifier(NewForwarder(config.RelayConfig{})).Notify(context.Background(), sampleRequest())
		assert.ErrorIs(t, err, ErrNotConfigured)

		var notifyErr *NotifyError
		require.True(t, errors.As(err, &notifyErr))
		assert.Equal(t, MsgConfigError, notifyErr.PublicMessage())
	})

	t.Run("invalid input never forwarded", func(t *testing.T) {
		up := okUpstream(t)
		fwd := NewForwarder(config.RelayConfig{AdminAPIURL: up.URL, AdminAPIKey: "k", Timeout: time.Second})

		req := sampleRequest()
		req.Email = "not-an-email"
		err := NewLocalNotifier(fwd).Notify(context.Background(), req)
		assert.EqualError(t, err, MsgInvalidEmail)
		assert.Equal(t, int32(0), up.hits.Load())
	})

	t.Run("upstream failure carries mapped message", func(t *testing.T) {
		up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		fwd := NewForwarder(config.RelayConfig{AdminAPIURL: up.URL, AdminAPIKey: "k", Timeout: time.Second})

		err := NewLocalNotifier(fwd).Notify(context.Background(), sampleRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), MsgUpstreamAuth)
	})
}
