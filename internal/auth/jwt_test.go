package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTGenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret-key-for-unit-tests", time.Hour)
	userID := uuid.New()

	token, err := manager.Generate(userID, "alice@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	gotID, gotEmail, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if gotID != userID {
		t.Errorf("user ID = %s, want %s", gotID, userID)
	}
	if gotEmail != "alice@example.com" {
		t.Errorf("email = %s, want alice@example.com", gotEmail)
	}
}

func TestJWTValidateRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret-key-for-unit-tests", -time.Minute)

	token, err := manager.Generate(uuid.New(), "alice@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret-key-for-unit-tests", time.Hour)
	other := NewJWTManager("a-completely-different-secret", time.Hour)

	token, err := manager.Generate(uuid.New(), "alice@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTValidateRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret-key-for-unit-tests", time.Hour)

	if _, _, err := manager.Validate("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("CheckPassword() with right password error = %v", err)
	}
	if err := CheckPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with wrong password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("ValidatePassword(short) error = %v, want ErrWeakPassword", err)
	}
	if err := ValidatePassword("long enough password"); err != nil {
		t.Errorf("ValidatePassword(ok) error = %v", err)
	}
}
