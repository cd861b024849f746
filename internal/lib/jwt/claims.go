// Package jwt implements generation and parsing of the bearer tokens the
// service issues on login. Claims carry the authentication identity uid and
// the profile role on top of the registered claim set.
package jwt

import (
	"time"
)

// Maker describes token generation and parsing.
type Maker interface {
	// GenerateToken issues a signed token for the given identity uid and role.
	GenerateToken(userUID, role string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker using an HS256 secret key and a fixed TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and token TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
