package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.UserAgent = ""
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestClient_SetsUserAgent(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "ycnodes-test/1.0"
	cfg.RetryAttempts = 0
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "ycnodes-test/1.0", ua)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RetryAttempts = 3
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxBackoff = 10 * time.Millisecond
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryPOSTByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RetryAttempts = 3
	cfg.RetryBackoff = time.Millisecond
	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Post(server.URL, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), calls.Load(), "non-idempotent methods execute once")
}

func TestSanitizeURL_RedactsSensitiveParams(t *testing.T) {
	u, err := url.Parse("https://llm.api.cloud.yandex.net/v1/models?api_key=AQVNsecret&page=2")
	require.NoError(t, err)

	out := sanitizeURL(u)
	assert.NotContains(t, out, "AQVNsecret")
	assert.Contains(t, out, "REDACTED")
	assert.Contains(t, out, "page=2")
}

func TestSanitizeURL_Nil(t *testing.T) {
	assert.Equal(t, "", sanitizeURL(nil))
}
