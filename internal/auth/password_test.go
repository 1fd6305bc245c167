package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := CheckPassword("password123", hash); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}
	if err := CheckPassword("wrong-password", hash); err != ErrInvalidPassword {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	if err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestHashPassword_NoMinimumLength(t *testing.T) {
	// Length policy lives in Signup, not here: password change
	// accepts short passwords.
	hash, err := HashPassword("abc", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := CheckPassword("abc", hash); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}
}
