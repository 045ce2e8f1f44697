package auth

import (
	"testing"

	"ventas-backend/internal/config"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.Issuer = "ventas-backend"
	cfg.JWT.ExpirationHours = 1
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig("s3cret"))
	token, err := m.GenerateToken("desktop")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Client != "desktop" || claims.Subject != "desktop" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejectedWithOtherSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig("one")).GenerateToken("desktop")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWTManager(testConfig("two")).ValidateToken(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager(testConfig("")).GenerateToken("desktop"); err == nil {
		t.Error("expected error without secret")
	}
}
