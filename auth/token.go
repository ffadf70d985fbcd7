package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// TokenBytes is the entropy of a bearer token (256 bits).
const TokenBytes = 32

const bearerScheme = "bearer "

// GenerateToken returns a fresh random bearer token, hex encoded.
// The raw value is handed to the client once and never persisted.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken derives the storage key of a token. Sessions are looked up by this
// digest only, so raw token bytes are never compared.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ParseBearer extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and an empty token is rejected.
func ParseBearer(header string) (string, bool) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", false
	}
	return token, true
}
