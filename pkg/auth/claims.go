package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// TenantID is nil for super admins.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Role     enums.UserRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	TenantID *uuid.UUID     `json:"tenant_id,omitempty"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
