package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// MakeRandHexString returns a hex string built from size cryptographically
// random bytes, so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NormalizeEmail canonicalizes an email address for uniqueness comparison
// and storage: trim surrounding whitespace and lower-case.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
