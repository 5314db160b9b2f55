package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func newTestService(t *testing.T, accessTTL, refreshTTL time.Duration) *AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	svc, err := NewAuthService(privatePEM, publicPEM, accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestTokenPairRoundTrip(t *testing.T) {
	svc := newTestService(t, 15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(42, "recruiter")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	access, err := svc.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if access.UserID != 42 {
		t.Errorf("access UserID = %d, want 42", access.UserID)
	}
	if access.Role != "recruiter" {
		t.Errorf("access Role = %q, want recruiter", access.Role)
	}
	if access.TokenType != "access" {
		t.Errorf("access TokenType = %q", access.TokenType)
	}

	refresh, err := svc.ValidateToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if refresh.TokenType != "refresh" {
		t.Errorf("refresh TokenType = %q", refresh.TokenType)
	}
	if refresh.ID == "" {
		t.Error("refresh token missing jti")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t, 15*time.Minute, 24*time.Hour)

	if _, err := svc.ValidateToken(""); err == nil {
		t.Error("empty token accepted")
	}
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Error("malformed token accepted")
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestService(t, 15*time.Minute, 24*time.Hour)
	verifier := newTestService(t, 15*time.Minute, 24*time.Hour)

	pair, err := issuer.GenerateTokenPair(1, "candidate")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if _, err := verifier.ValidateToken(pair.AccessToken); err == nil {
		t.Error("token signed with a different key accepted")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t, -time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(1, "candidate")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if _, err := svc.ValidateToken(pair.AccessToken); err == nil {
		t.Error("expired token accepted")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-passw0rd" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPasswordHash("s3cret-passw0rd", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
