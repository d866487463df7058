// Package auth issues and verifies the access tokens handed out after a
// successful face login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered claims plus the authenticated username.
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"username"`
}

// GenerateToken signs an HS256 token for userName valid for validityDuration.
func GenerateToken(userName string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserName: userName,
	})

	return token.SignedString(secretKey)
}

// GetUserNameFromToken verifies tokenString and returns its username.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func GetUserNameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserName == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserName, nil
}
