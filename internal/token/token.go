// Package token generates the identifiers used across the portal: bearer
// credentials for sessions and magic links, and plain record IDs.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// tokenBytes is the raw entropy of a bearer token. 32 bytes hex-encodes to
// a 64-character string.
const tokenBytes = 32

// New returns a cryptographically random bearer token. The token carries no
// structure and no relation to the account it will be bound to.
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewID returns a random identifier for non-credential rows (users, meetings,
// attendance records). UUIDs are unique enough here and stay readable in logs.
func NewID() string {
	return uuid.NewString()
}
