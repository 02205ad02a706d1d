package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashPassword_Verify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if !VerifyPassword("s3cret", hash) {
		t.Error("correct password should verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestHashPassword_Uniqueness(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	b, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if a == b {
		t.Error("hashes of the same password should differ by salt")
	}
}

func TestHashPassword_TruncatesLongInput(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("long passwords should hash, got: %v", err)
	}
	if !VerifyPassword(strings.Repeat("a", 72)+"ignored", hash) {
		t.Error("only the first 72 bytes should count")
	}
	if VerifyPassword(strings.Repeat("a", 71), hash) {
		t.Error("a shorter prefix should not verify")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("x", "not-a-hash") {
		t.Error("malformed hash should not verify")
	}
}
