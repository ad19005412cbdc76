package services

import (
	"strings"
	"testing"
)

func TestGenerateInviteTokenIsURLSafe(t *testing.T) {
	token, hash, err := GenerateInviteToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
	if strings.ContainsAny(token, "+/=?&") {
		t.Errorf("token %q contains characters unsafe for a query parameter", token)
	}
	if hash != HashInviteToken(token) {
		t.Error("returned hash should match HashInviteToken of the token")
	}
}

func TestGenerateInviteTokenIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := GenerateInviteToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[token] {
			t.Fatal("generated a duplicate token")
		}
		seen[token] = true
	}
}

func TestHashInviteTokenIsStable(t *testing.T) {
	if HashInviteToken("abc") != HashInviteToken("abc") {
		t.Error("hashing the same token twice should give the same hash")
	}
	if HashInviteToken("abc") == HashInviteToken("abd") {
		t.Error("different tokens should not collide")
	}
	if len(HashInviteToken("abc")) != 64 {
		t.Error("expected a hex SHA-256 hash")
	}
}
