package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user123",
		"iss": "accounts",
		"exp": exp.Unix(),
	}).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatal(err)
	}

	c, err := DecodeClaims(signed)
	if err != nil {
		t.Fatal(err)
	}
	if c.Subject != "user123" || c.Issuer != "accounts" || !c.ExpiresAt.Equal(exp) {
		t.Errorf("unexpected claims %+v", c)
	}
}

func TestDecodeClaimsOpaque(t *testing.T) {
	if _, err := DecodeClaims("BQD3opaque-token"); !errors.Is(err, ErrNotJWT) {
		t.Errorf("expected ErrNotJWT, got %v", err)
	}
}
