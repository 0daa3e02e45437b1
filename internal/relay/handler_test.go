package relay

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinnesia/domainform-backend/config"
)

const validBody = `{"name":"Ana","email":"ana@x.com","purpose":"blog","platform_link":"https://x.com"}`

type upstream struct {
	*httptest.Server
	hits atomic.Int32
	last atomic.Pointer[http.Request]
	body atomic.Pointer[[]byte]
}

func newUpstream(t *testing.T, fn http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		u.body.Store(&b)
		u.last.Store(r.Clone(r.Context()))
		fn(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func newTestRouter(url string, production bool, timeout time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)

	fwd := NewForwarder(config.RelayConfig{AdminAPIURL: url, AdminAPIKey: "test-key", Timeout: timeout})
	r := gin.New()
	r.Use(CORS())
	NewHandler(fwd, production).Register(r)
	return r
}

func doRequest(r http.Handler, method, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, Path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://domain.vinnesia.my.id")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func okUpstream(t *testing.T) *upstream {
	return newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"adm-1","received":true}`))
	})
}

func TestSend_Success(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	before := time.Now().UTC()
	rr := doRequest(r, http.MethodPost, validBody)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, MsgSuccess, resp.Message)
	require.NotNil(t, resp.Data)

	ts, err := time.Parse(time.RFC3339Nano, resp.Data.SubmittedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, before, ts, 5*time.Second)

	ack, ok := resp.Data.AdminResponse.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "adm-1", ack["id"])
	assert.Equal(t, int32(1), up.hits.Load())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSend_ForwardsNormalizedRecord(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	rr := doRequest(r, http.MethodPost, `{"name":"  Ana  ","email":"Ana@X.COM","purpose":" blog ","platform_link":" https://x.com "}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req := up.last.Load()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "test-key", req.Header.Get(APIKeyHeader))
	assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(*up.body.Load(), &sent))
	assert.Equal(t, "Ana", sent["name"])
	assert.Equal(t, "ana@x.com", sent["email"])
	assert.Equal(t, "blog", sent["purpose"])
	assert.Equal(t, "https://x.com", sent["platform_link"])
	assert.Equal(t, Source, sent["source"])
	assert.Contains(t, sent, "user_id")
	assert.Nil(t, sent["user_id"])
	assert.NotEmpty(t, sent["submitted_at"])
}

func TestSend_ForwardsUserID(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	body := `{"name":"Ana","email":"ana@x.com","purpose":"blog","platform_link":"https://x.com","user_id":"uid-7"}`
	rr := doRequest(r, http.MethodPost, body)
	require.Equal(t, http.StatusOK, rr.Code)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(*up.body.Load(), &sent))
	assert.Equal(t, "uid-7", sent["user_id"])
}

func TestSend_Preflight(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, Path, nil)
		req.Header.Set("Origin", "https://domain.vinnesia.my.id")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Body.String())
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("bare options", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, Path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_MethodNotAllowed(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rr := doRequest(r, m, validBody)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, m)
		resp := decode(t, rr)
		assert.False(t, resp.Success)
		assert.Equal(t, MsgMethodNotAllowed, resp.Error)
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, cfg := range []config.RelayConfig{
		{AdminAPIURL: "", AdminAPIKey: "k"},
		{AdminAPIURL: "http://admin.local", AdminAPIKey: ""},
		{},
	} {
		r := gin.New()
		NewHandler(NewForwarder(cfg), false).Register(r)

		rr := doRequest(r, http.MethodPost, validBody)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decode(t, rr)
		assert.Equal(t, MsgConfigError, resp.Error)
		assert.Empty(t, resp.Details)
	}
}

func TestSend_NotConfiguredLogsPresence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	r := gin.New()
	NewHandler(NewForwarder(config.RelayConfig{AdminAPIURL: "http://admin.local", AdminAPIKey: " "}), false).Register(r)
	rr := doRequest(r, http.MethodPost, validBody)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "relay.config", entry["operation"])
	assert.Equal(t, true, entry["has_admin_api_url"])
	assert.Equal(t, false, entry["has_admin_api_key"])
	assert.NotContains(t, buf.String(), "admin.local")
}

func TestSend_ConfigCheckedBeforeInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewForwarder(config.RelayConfig{}), false).Register(r)

	rr := doRequest(r, http.MethodPost, `{}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSend_MissingFields(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	bodies := map[string]string{
		"name":          `{"email":"ana@x.com","purpose":"blog","platform_link":"https://x.com"}`,
		"email":         `{"name":"Ana","purpose":"blog","platform_link":"https://x.com"}`,
		"purpose":       `{"name":"Ana","email":"ana@x.com","platform_link":"https://x.com"}`,
		"platform_link": `{"name":"Ana","email":"ana@x.com","purpose":"blog"}`,
		"blank name":    `{"name":"   ","email":"ana@x.com","purpose":"blog","platform_link":"https://x.com"}`,
		"empty object":  `{}`,
		"empty body":    ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := doRequest(r, http.MethodPost, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, MsgMissingFields, decode(t, rr).Error)
		})
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_InvalidEmail(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	for _, email := range []string{"ana", "ana@x", "ana@@x.com", "ana x@x.com", "@x.com"} {
		body := `{"name":"Ana","email":"` + email + `","purpose":"blog","platform_link":"https://x.com"}`
		rr := doRequest(r, http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, email)
		assert.Equal(t, MsgInvalidEmail, decode(t, rr).Error, email)
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_InvalidPlatformLink(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	for _, link := range []string{"x.com", "ftp://x.com", "javascript:alert(1)", "https://", "not a url"} {
		body := `{"name":"Ana","email":"ana@x.com","purpose":"blog","platform_link":"` + link + `"}`
		rr := doRequest(r, http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, link)
		assert.Equal(t, MsgInvalidURL, decode(t, rr).Error, link)
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_MalformedJSON(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	for _, body := range []string{`{"name":`, `[1,2]`, `{"name":42,"email":"ana@x.com"}`} {
		rr := doRequest(r, http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, MsgInvalidBody, decode(t, rr).Error)
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSend_UpstreamStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusUnauthorized, MsgUpstreamAuth},
		{http.StatusForbidden, MsgUpstreamForbidden},
		{http.StatusTooManyRequests, MsgUpstreamRateLimited},
		{http.StatusInternalServerError, MsgUpstreamServerError},
		{http.StatusBadRequest, MsgUpstreamGeneric},
		{http.StatusNotFound, MsgUpstreamGeneric},
		{http.StatusBadGateway, MsgUpstreamGeneric},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte("upstream says no"))
			})

			rr := doRequest(newTestRouter(up.URL, false, time.Second), http.MethodPost, validBody)
			assert.Equal(t, tc.status, rr.Code)
			resp := decode(t, rr)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.message, resp.Error)
			assert.Equal(t, "upstream says no", resp.Details)

			rr = doRequest(newTestRouter(up.URL, true, time.Second), http.MethodPost, validBody)
			assert.Equal(t, tc.status, rr.Code)
			assert.Empty(t, decode(t, rr).Details)
			assert.NotContains(t, rr.Body.String(), "details")
		})
	}
}

func TestSend_NetworkFailure(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
		}
	})

	rr := doRequest(newTestRouter(up.URL, false, time.Second), http.MethodPost, validBody)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, MsgConnect, resp.Error)
	assert.NotContains(t, resp.Error, "goroutine")
}

func TestSend_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rr := doRequest(newTestRouter(url, true, time.Second), http.MethodPost, validBody)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decode(t, rr)
	assert.Equal(t, MsgUnavailable, resp.Error)
	assert.Empty(t, resp.Details)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	rr := doRequest(newTestRouter(up.URL, false, 50*time.Millisecond), http.MethodPost, validBody)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.Equal(t, MsgTimeout, decode(t, rr).Error)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSend_DegradedUpstreamBody(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		rr := doRequest(newTestRouter(up.URL, false, time.Second), http.MethodPost, validBody)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]any{}, decode(t, rr).Data.AdminResponse)
	})

	t.Run("non-json body", func(t *testing.T) {
		up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>ok</html>"))
		})
		rr := doRequest(newTestRouter(up.URL, false, time.Second), http.MethodPost, validBody)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode(t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, map[string]any{"message": "Response received but not parseable"}, resp.Data.AdminResponse)
	})
}

func TestSend_NotIdempotent(t *testing.T) {
	up := okUpstream(t)
	r := newTestRouter(up.URL, false, time.Second)

	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, validBody).Code)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, validBody).Code)
	assert.Equal(t, int32(2), up.hits.Load())
}
