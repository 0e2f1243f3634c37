package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "daftar",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()
	tenantID := uuid.New()

	payload := AccessTokenPayload{
		UserID:   userID,
		TenantID: &tenantID,
		Role:     enums.UserRoleStoreOwner,
		JTI:      "jti-fixed",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.TenantID == nil || *claims.TenantID != tenantID {
		t.Fatalf("tenant id not preserved")
	}
	if claims.Role != enums.UserRoleStoreOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "jti-fixed" {
		t.Fatalf("expected jti to round-trip, got %s", claims.ID)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if strings.TrimSpace(claims.ID) == "" {
		t.Fatal("expected generated jti")
	}
	if claims.TenantID != nil {
		t.Fatal("super admin token should carry no tenant id")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	if _, err := MintAccessToken(config.JWTConfig{}, now, AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: uuid.New(), Role: "ghost"}); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().UTC().Add(-2 * time.Hour)

	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAccountant,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("expected expired parse to succeed: %v", err)
	}
	if claims.Role != enums.UserRoleAccountant {
		t.Fatalf("unexpected role %s", claims.Role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleEmployee,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
