package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// inviteTokenBytes gives 256 bits of entropy per token.
const inviteTokenBytes = 32

// GenerateInviteToken returns a URL-safe random token and the hex SHA-256
// hash under which it is stored. Raw URL encoding keeps the token free of
// characters that would need escaping in a query parameter.
func GenerateInviteToken() (token string, hash string, err error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating invite token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashInviteToken(token), nil
}

// HashInviteToken hashes a presented token for lookup. Only hashes are
// persisted; the unique index on the hash is the collision backstop.
func HashInviteToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
