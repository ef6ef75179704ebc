package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for opaque access tokens.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the readable part of a JWT-shaped access token.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	Raw       jwt.MapClaims
}

// DecodeClaims reads the claims of a JWT access token without verifying
// the signature. It is for display only; the catalog verifies tokens.
func DecodeClaims(token string) (*Claims, error) {
	parser := jwt.NewParser()
	raw := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	c := &Claims{Raw: raw}
	c.Subject, _ = raw.GetSubject()
	c.Issuer, _ = raw.GetIssuer()
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
