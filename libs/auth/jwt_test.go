package auth

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := NewClaims("admin", "admin", time.Hour)
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Role != claims.Role {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
}

func TestHS256Expired(t *testing.T) {
	claims := NewClaims("admin", "admin", -time.Minute)
	token, err := SignHS256(claims, "s")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "s"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHS256RejectsForeignTokens(t *testing.T) {
	secret := "s"
	noExp := NewClaims("admin", "admin", time.Hour)
	noExp.Exp = 0
	otherIssuer := NewClaims("admin", "admin", time.Hour)
	otherIssuer.Iss = "someone-else"

	for name, claims := range map[string]Claims{"no exp": noExp, "other issuer": otherIssuer} {
		token, err := SignHS256(claims, secret)
		if err != nil {
			t.Fatalf("%s: SignHS256 failed: %v", name, err)
		}
		if _, err := ParseAndVerifyHS256(token, secret); err != ErrInvalidToken {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}

	good, _ := SignHS256(NewClaims("admin", "admin", time.Hour), secret)
	_, payload, sig, _ := splitToken(good)
	none := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	if _, err := ParseAndVerifyHS256(none+"."+payload+"."+sig, secret); err != ErrInvalidToken {
		t.Fatalf("expected alg none to be rejected, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("Bearer abc"); !ok || tok != "abc" {
		t.Fatalf("expected abc, got %q %v", tok, ok)
	}
	if tok, ok := BearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("expected case-insensitive scheme, got %q %v", tok, ok)
	}
	if _, ok := BearerToken("Basic abc"); ok {
		t.Fatal("expected Basic to be rejected")
	}
	if _, ok := BearerToken("Bearer   "); ok {
		t.Fatal("expected empty bearer to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("VerifyPassword should succeed: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("expected VerifyPassword to fail for wrong password")
	}
}
