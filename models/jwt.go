package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminScope is the only scope the service issues. Tokens carry it so a
// future scope split does not need a claims migration.
const AdminScope = "admin"

type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAdminToken issues an HS256 token granting admin access for ttl.
func NewAdminToken(secret string, ttl time.Duration) (string, error) {
	claims := AdminClaims{
		Scope: AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAdminToken parses tokenString and verifies it is a live admin
// token signed with secret.
func ValidateAdminToken(tokenString string, secret string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Scope != AdminScope {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
