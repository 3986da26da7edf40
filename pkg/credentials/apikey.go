package credentials

import (
	"fmt"
	"net/http"
)

// DefaultLLMEndpoint is the OpenAI-compatible YandexGPT endpoint.
const DefaultLLMEndpoint = "https://llm.api.cloud.yandex.net/v1"

// APIKey holds authentication for the API-key services (YandexGPT).
// Requests carry the key as a bearer Authorization header plus the
// folder scope header.
type APIKey struct {
	// Key is the API key secret
	Key string `yaml:"apiKey"`

	// FolderID scopes requests to a cloud folder
	FolderID string `yaml:"folderId"`

	// BaseURL overrides the API endpoint. Empty uses the service default.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// DisableDataLogging asks the service not to log request data
	// remotely by sending x-data-logging-enabled: false.
	DisableDataLogging bool `yaml:"disableDataLogging,omitempty"`
}

// Validate checks the key and folder scope are present.
func (c APIKey) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("API key is required")
	}
	if c.FolderID == "" {
		return fmt.Errorf("folder id is required")
	}
	return nil
}

// Redacted returns a safe-to-log rendition with the key masked.
func (c APIKey) Redacted() string {
	s := fmt.Sprintf("APIKey: %s, FolderID: %s", maskSecret(c.Key), c.FolderID)
	if c.BaseURL != "" {
		s += fmt.Sprintf(", BaseURL: %s", c.BaseURL)
	}
	return s
}

// Kind returns "apiKey".
func (c APIKey) Kind() string {
	return "apiKey"
}

// ResolvedBaseURL returns the configured endpoint or the service default.
func (c APIKey) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultLLMEndpoint
}

// ApplyHeaders injects the Authorization/x-folder-id pair, and the
// data-logging opt-out when configured, at request time.
func (c APIKey) ApplyHeaders(h http.Header) {
	h.Set("Authorization", "Bearer "+c.Key)
	h.Set("x-folder-id", c.FolderID)
	if c.DisableDataLogging {
		h.Set("x-data-logging-enabled", "false")
	}
}

// Transport wraps an http.RoundTripper so every outbound request carries
// the credential headers. A nil base uses http.DefaultTransport.
func (c APIKey) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &headerTransport{base: base, cred: c}
}

type headerTransport struct {
	base http.RoundTripper
	cred APIKey
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	t.cred.ApplyHeaders(clone.Header)
	return t.base.RoundTrip(clone)
}
