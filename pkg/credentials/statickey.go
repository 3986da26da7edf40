package credentials

import (
	"fmt"
)

// Default regional endpoints for the AWS-compatible Yandex services.
const (
	DefaultQueueEndpoint   = "https://message-queue.api.cloud.yandex.net"
	DefaultPostboxEndpoint = "https://postbox.cloud.yandex.net"
	DefaultRegion          = "ru-central1"
)

// StaticKey holds a static access-key pair for the AWS-SDK-compatible
// services (Message Queue, Postbox).
type StaticKey struct {
	// AccessKeyID is the key identifier
	AccessKeyID string `yaml:"accessKeyId"`

	// SecretAccessKey is the key secret
	SecretAccessKey string `yaml:"secretAccessKey"`

	// Endpoint overrides the service endpoint. Empty uses the service's
	// regional default.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Region is the signing region. Empty uses ru-central1.
	Region string `yaml:"region,omitempty"`
}

// Validate checks both halves of the key pair are present.
func (c StaticKey) Validate() error {
	if c.AccessKeyID == "" {
		return fmt.Errorf("access key id is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("secret access key is required")
	}
	return nil
}

// Redacted returns a safe-to-log rendition with the secret masked.
func (c StaticKey) Redacted() string {
	return fmt.Sprintf("AccessKeyID: %s, SecretAccessKey: %s", c.AccessKeyID, maskSecret(c.SecretAccessKey))
}

// Kind returns "staticKey".
func (c StaticKey) Kind() string {
	return "staticKey"
}

// ResolvedRegion returns the configured region or the default.
func (c StaticKey) ResolvedRegion() string {
	if c.Region != "" {
		return c.Region
	}
	return DefaultRegion
}
