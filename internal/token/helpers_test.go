package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func jwtNumericDate(t time.Time) *jwt.NumericDate {
	return jwt.NewNumericDate(t)
}

// signPlainJWT signs claims without the session header type, standing in for
// a JWT minted by some other system with the same key.
func signPlainJWT(claims Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
