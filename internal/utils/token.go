package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// NewResetToken returns 32 random bytes, hex encoded.
func NewResetToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
