package auth

import (
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "pw1" {
		t.Fatalf("hash must not be plaintext")
	}
	if !CheckPassword(hash, "pw1") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "pw2") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Fatalf("expected different salts to produce different hashes")
	}
}

func TestJWT_SignAndParse(t *testing.T) {
	tok, err := SignJWT(42, "secret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, err := ParseJWT(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestJWT_Rejects(t *testing.T) {
	tok, _ := SignJWT(7, "secret", time.Minute)
	if _, err := ParseJWT(tok, "other"); err != ErrInvalidToken {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}
	expired, _ := SignJWT(7, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err != ErrInvalidToken {
		t.Fatalf("expected invalid token for expired, got %v", err)
	}
	if _, err := ParseJWT("garbage", "secret"); err != ErrInvalidToken {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}
}
