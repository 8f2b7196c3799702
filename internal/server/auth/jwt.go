// Package auth issues and validates the HS256 access tokens handed to
// clients after a successful login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries only registered claims: the subject is the user name and
// ExpiresAt bounds the token lifetime. Nothing is stored server-side.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for subject that expires validityDuration from now.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(validityDuration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// GetSubjectFromToken validates signature, algorithm and expiry and returns
// the subject. Expired tokens yield common.ErrTokenExpired, everything else
// that fails validation yields common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
