package auth

import (
	"testing"
	"time"

	"github.com/stockwise-ai/stockwise-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stockwise",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseServiceToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintServiceToken(cfg, now, ServiceTokenPayload{ClientID: "dashboard"})
	if err != nil {
		t.Fatalf("MintServiceToken returned error: %v", err)
	}

	claims, err := ParseServiceToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseServiceToken returned error: %v", err)
	}
	if claims.ClientID != "dashboard" {
		t.Fatalf("expected client id dashboard, got %q", claims.ClientID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %q, got %q", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintServiceToken_Validation(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload ServiceTokenPayload
	}{
		{name: "missing secret", cfg: config.JWTConfig{Issuer: "stockwise", ExpirationMinutes: 60}, payload: ServiceTokenPayload{ClientID: "dashboard"}},
		{name: "missing issuer", cfg: config.JWTConfig{Secret: "s", ExpirationMinutes: 60}, payload: ServiceTokenPayload{ClientID: "dashboard"}},
		{name: "bad expiry", cfg: config.JWTConfig{Secret: "s", Issuer: "stockwise"}, payload: ServiceTokenPayload{ClientID: "dashboard"}},
		{name: "empty client", cfg: testJWTConfig(), payload: ServiceTokenPayload{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintServiceToken(tc.cfg, now, tc.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseServiceToken_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintServiceToken(cfg, time.Now(), ServiceTokenPayload{ClientID: "dashboard"})
	if err != nil {
		t.Fatalf("MintServiceToken returned error: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseServiceToken(other, signed); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseServiceToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintServiceToken(cfg, time.Now().Add(-2*time.Hour), ServiceTokenPayload{ClientID: "dashboard"})
	if err != nil {
		t.Fatalf("MintServiceToken returned error: %v", err)
	}

	if _, err := ParseServiceToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}
