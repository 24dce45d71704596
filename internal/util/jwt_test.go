package util

import (
	"elearn_backend/internal/model"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret-that-is-long-enough-123"
	user := &model.User{
		Email: "student@example.com",
		Role:  model.Student,
	}
	user.ID = 42

	token, err := GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}

	if claims.UserID != 42 || claims.Email != user.Email || claims.Role != model.Student {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.IsAdmin() {
		t.Fatal("student claims reported as admin")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "secret-one-that-is-long-enough-xx", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, "secret-two-that-is-long-enough-xx"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	user.ID = 1

	secret := "secret-one-that-is-long-enough-xx"
	token, err := GenerateJWT(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, secret); err == nil {
		t.Fatal("expected error for expired token")
	}
}
