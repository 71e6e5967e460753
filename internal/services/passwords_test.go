package services

import (
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	var hasher PasswordHasher
	hash, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "pw1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if !hasher.Verify("pw1", hash) {
		t.Fatal("correct password rejected")
	}
	if hasher.Verify("pw2", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	var hasher PasswordHasher
	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	var hasher PasswordHasher
	for _, hash := range []string{"", "plaintext", "$argon2id$v=19$broken"} {
		if hasher.Verify("pw1", hash) {
			t.Fatalf("verify accepted malformed hash %q", hash)
		}
	}
}
