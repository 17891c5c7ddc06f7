// Package token issues and verifies the compact signed session tokens the
// storefront uses for both sessions and password resets.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-session/internal/model"
)

// headerType distinguishes session tokens from any other JWT a client might
// present.
const headerType = "session"

// Claims is the canonical payload shape: userId, email, role and exp.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the user. exp is absolute epoch seconds, ttl from
// now.
func (c *Codec) Issue(userID string, email string, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["typ"] = headerType

	return tok.SignedString(c.secret)
}

// Verify recomputes the signature and checks expiry. The exp boundary is
// exclusive: a token whose exp equals the current second is already expired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrInvalidToken
	}

	if !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	if typ, _ := parsed.Header["typ"].(string); typ != headerType {
		return nil, model.ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}
