package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/splitr-app/splitr/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-for-tests-only", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret-key-for-tests-only", -time.Minute)
	token, err := m.Generate(&models.User{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one-secret-one-secret-one", time.Hour)
	m2 := NewJWTManager("secret-two-secret-two-secret-two", time.Hour)

	token, err := m1.Generate(&models.User{ID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := m2.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), "u1", "alice@example.com")
	if got := UserIDFrom(ctx); got != "u1" {
		t.Errorf("UserIDFrom() = %q, want u1", got)
	}
	if got := EmailFrom(ctx); got != "alice@example.com" {
		t.Errorf("EmailFrom() = %q, want alice@example.com", got)
	}
	if got := UserIDFrom(context.Background()); got != "" {
		t.Errorf("UserIDFrom(empty) = %q, want empty", got)
	}
}
