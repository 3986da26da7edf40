package credentials

import (
	"encoding/json"
	"fmt"
)

// DefaultAPIEndpoint is the Yandex Cloud gRPC API endpoint.
const DefaultAPIEndpoint = "api.cloud.yandex.net:443"

// ServiceAccount holds an authorized-key JSON blob for the gRPC cloud
// API (Lockbox). The console exports these in snake_case, older tooling
// in camelCase; both spellings are accepted field by field.
type ServiceAccount struct {
	// KeyID is the authorized key identifier
	KeyID string

	// ServiceAccountID is the service account the key belongs to
	ServiceAccountID string

	// PrivateKey is the PEM-encoded RSA private key
	PrivateKey string

	// Endpoint overrides the cloud API endpoint (host:port). Empty uses
	// api.cloud.yandex.net:443.
	Endpoint string

	// Database is the default database path for the managed-database
	// services that share this credential shape. Unused by the nodes in
	// this repository.
	Database string
}

// serviceAccountJSON accepts both console (snake_case) and legacy
// (camelCase) spellings of the authorized key file.
type serviceAccountJSON struct {
	ID                    string `json:"id"`
	ServiceAccountIDSnake string `json:"service_account_id"`
	ServiceAccountIDCamel string `json:"serviceAccountId"`
	PrivateKeySnake       string `json:"private_key"`
	PrivateKeyCamel       string `json:"privateKey"`
}

// ParseServiceAccountKey parses an authorized-key JSON blob.
func ParseServiceAccountKey(raw string) (ServiceAccount, error) {
	var key serviceAccountJSON
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return ServiceAccount{}, fmt.Errorf("service account key is not valid JSON: %w", err)
	}

	sa := ServiceAccount{
		KeyID:            key.ID,
		ServiceAccountID: firstNonEmpty(key.ServiceAccountIDSnake, key.ServiceAccountIDCamel),
		PrivateKey:       firstNonEmpty(key.PrivateKeySnake, key.PrivateKeyCamel),
	}
	if err := sa.Validate(); err != nil {
		return ServiceAccount{}, err
	}
	return sa, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the key triple is complete.
func (c ServiceAccount) Validate() error {
	if c.KeyID == "" {
		return fmt.Errorf("key id is required")
	}
	if c.ServiceAccountID == "" {
		return fmt.Errorf("service account id is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	return nil
}

// Redacted returns a safe-to-log rendition; the private key is never shown.
func (c ServiceAccount) Redacted() string {
	return fmt.Sprintf("KeyID: %s, ServiceAccountID: %s, PrivateKey: <redacted>", c.KeyID, c.ServiceAccountID)
}

// Kind returns "serviceAccount".
func (c ServiceAccount) Kind() string {
	return "serviceAccount"
}

// ResolvedEndpoint returns the configured endpoint or the default.
func (c ServiceAccount) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultAPIEndpoint
}
