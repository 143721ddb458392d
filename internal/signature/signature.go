// Package signature derives and verifies the HMAC-SHA256 signatures
// embedded in payment QR tokens and receipt verification codes.
//
// The signed message is a stable external contract: for a payment
// request it is the request's UUID string and nothing else, for a
// receipt it is the official receipt number. Changing either shape, or
// rotating the secret, invalidates every outstanding unredeemed QR
// code, so the secret is loaded once at boot and never per request.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNoSecret is returned when a Signer is constructed without a
// secret. main treats this as a boot failure; there is no fallback to
// an unsigned or default-key mode.
var ErrNoSecret = errors.New("signing secret is not configured")

// Signer signs and verifies messages with a process-wide secret.
// Stateless and safe for concurrent use.
type Signer struct {
	secret []byte
}

// New creates a Signer. The secret must be non-empty.
func New(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 digest of message.
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature for message and compares it to the
// provided one in constant time.
func (s *Signer) Verify(message, provided string) bool {
	expected := s.Sign(message)
	return hmac.Equal([]byte(expected), []byte(provided))
}
