package rbac

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Opaque token byte lengths. API tokens carry more entropy since they are
// long-lived; reset tokens are short-lived single-use secrets.
const (
	ApiTokenByteLength   = 256
	ResetTokenByteLength = 64
)

// GenerateRandomToken returns byteLength cryptographically secure random
// bytes, hex encoded. Used for API tokens and password reset tokens.
func GenerateRandomToken(byteLength int) string {
	if byteLength <= 0 {
		byteLength = ResetTokenByteLength
	}
	buf := make([]byte, byteLength)
	// rand.Read never returns a partial read without an error
	if _, err := rand.Read(buf); err != nil {
		panic("rbac: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// ObscureToken masks the middle of an opaque token for display, keeping
// the first 3 and last 4 characters verbatim. The raw secret is shown to
// the caller exactly once, at issue time.
func ObscureToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:3] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
