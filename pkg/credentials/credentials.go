// Package credentials defines the credential shapes the Yandex Cloud
// nodes accept and how each is validated and safely logged. Secrets never
// appear in log output: Redacted is the only stringer nodes use.
package credentials

import (
	"strings"
)

// Credentials is implemented by every credential shape.
type Credentials interface {
	// Validate checks the credentials are present and well formed.
	Validate() error

	// Redacted returns a safe-to-log rendition with secret material masked.
	Redacted() string

	// Kind returns the credential kind identifier ("staticKey", "apiKey",
	// "serviceAccount").
	Kind() string
}

// maskSecret keeps the first and last four characters of long secrets
// and masks everything else.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
