// Package config loads the tool configuration: per-service credentials,
// logging, HTTP and rate-limit settings. Configuration comes from a
// YAML file under the XDG config directory, overridden by environment
// variables; secret-valued fields may reference the system keychain
// with a keyring: prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
	"github.com/flowmation/yandexcloud-nodes/pkg/httpclient"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete tool configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Credentials per service family. Only the services actually
	// invoked need their credentials present.
	Queue   *credentials.StaticKey `yaml:"queue,omitempty"`
	Postbox *credentials.StaticKey `yaml:"postbox,omitempty"`
	Lockbox *LockboxConfig         `yaml:"lockbox,omitempty"`
	GPT     *GPTConfig             `yaml:"gpt,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level: trace, debug, info, warn, error. Default: info.
	Level string `yaml:"level,omitempty"`

	// Format: json or text. Default: text.
	Format string `yaml:"format,omitempty"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	// TimeoutSeconds bounds each request. Default: 30.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// RetryAttempts is the retry count for retryable failures. Default: 2.
	RetryAttempts int `yaml:"retry_attempts,omitempty"`
}

// ClientConfig maps the HTTP settings onto the outbound client
// configuration, keeping the client defaults for anything unset.
func (h HTTPConfig) ClientConfig() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	if h.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(h.TimeoutSeconds) * time.Second
	}
	cfg.RetryAttempts = h.RetryAttempts
	return cfg
}

// MetricsConfig enables the Prometheus collectors.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LockboxConfig holds the secret-management credentials: a
// service-account key, inline or by file path, and the default folder.
type LockboxConfig struct {
	// KeyFile is a path to the service-account key JSON
	KeyFile string `yaml:"key_file,omitempty"`

	// KeyJSON is the inline service-account key JSON
	KeyJSON string `yaml:"key_json,omitempty"`

	// FolderID is the default folder for listing operations
	FolderID string `yaml:"folder_id,omitempty"`

	// Endpoint overrides the API endpoint host:port
	Endpoint string `yaml:"endpoint,omitempty"`
}

// ServiceAccountKey loads and parses the configured service-account
// key, inline JSON taking precedence over the file path.
func (l *LockboxConfig) ServiceAccountKey() (credentials.ServiceAccount, error) {
	raw := l.KeyJSON
	if raw == "" {
		data, err := os.ReadFile(l.KeyFile)
		if err != nil {
			return credentials.ServiceAccount{}, fmt.Errorf("read service account key %s: %w", l.KeyFile, err)
		}
		raw = string(data)
	}
	sa, err := credentials.ParseServiceAccountKey(raw)
	if err != nil {
		return credentials.ServiceAccount{}, err
	}
	if l.Endpoint != "" {
		sa.Endpoint = l.Endpoint
	}
	return sa, nil
}

// GPTConfig holds the chat-service credentials and limits.
type GPTConfig struct {
	credentials.APIKey `yaml:",inline"`

	// RequestsPerSecond caps the client-side request rate. Zero
	// disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{TimeoutSeconds: 30, RetryAttempts: 2},
	}
}

// Validate checks the parts of the configuration that are present.
func (c *Config) Validate() error {
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: http.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	if c.HTTP.RetryAttempts < 0 {
		return fmt.Errorf("%w: http.retry_attempts must not be negative", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: log.format must be json or text, got %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Queue != nil {
		if err := c.Queue.Validate(); err != nil {
			return fmt.Errorf("%w: queue: %v", ErrInvalidConfig, err)
		}
	}
	if c.Postbox != nil {
		if err := c.Postbox.Validate(); err != nil {
			return fmt.Errorf("%w: postbox: %v", ErrInvalidConfig, err)
		}
	}
	if c.Lockbox != nil && c.Lockbox.KeyFile == "" && c.Lockbox.KeyJSON == "" {
		return fmt.Errorf("%w: lockbox: one of key_file or key_json is required", ErrInvalidConfig)
	}
	if c.GPT != nil {
		if err := c.GPT.Validate(); err != nil {
			return fmt.Errorf("%w: gpt: %v", ErrInvalidConfig, err)
		}
		if c.GPT.RequestsPerSecond < 0 {
			return fmt.Errorf("%w: gpt.requests_per_second must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}
