package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	if !h.Compare("pw123456", hash) {
		t.Fatalf("Compare rejected the correct password")
	}
	if h.Compare("wrong-password", hash) {
		t.Fatalf("Compare accepted a wrong password")
	}
}

func TestBcryptHasher_ZeroCostUsesDefault(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", h.cost, bcrypt.DefaultCost)
	}
}

func TestBcryptHasher_CompareInvalidHash(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	if h.Compare("anything", "not-a-bcrypt-hash") {
		t.Fatalf("Compare accepted an invalid hash")
	}
}
