package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/require"
)

// CreateSessionJWT creates a valid 15 minute session token for userID.
func (h *TestHelper) CreateSessionJWT(userID uuid.UUID, role models.RoleType) string {
	now := time.Now().Unix()
	return h.SignClaims(jwt.MapClaims{
		"iss":  "Keystone",
		"sub":  userID.String(),
		"role": string(role),
		"iat":  now,
		"exp":  now + 15*60,
	})
}

// CreateExpiredJWT creates a token that expired a minute ago.
func (h *TestHelper) CreateExpiredJWT(userID uuid.UUID, role models.RoleType) string {
	now := time.Now().Unix()
	return h.SignClaims(jwt.MapClaims{
		"iss":  "Keystone",
		"sub":  userID.String(),
		"role": string(role),
		"iat":  now - 16*60,
		"exp":  now - 60,
	})
}

// SignClaims signs arbitrary claims with the helper's key.
func (h *TestHelper) SignClaims(claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT")
	return signed
}
