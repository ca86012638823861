package auth

import (
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Token issuance lives in the identity service; minting here exists for
// tests and local tooling.
type AccessTokenPayload struct {
	CustomerID uuid.UUID
	Role       enums.Actor
}

// AccessTokenClaims represents the typed JWT presented by customers and staff.
type AccessTokenClaims struct {
	CustomerID uuid.UUID   `json:"customer_id"`
	Role       enums.Actor `json:"role"`
	jwt.RegisteredClaims
}
