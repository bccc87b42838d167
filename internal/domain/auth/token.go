package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	EmployeeID string `json:"eid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) Actor() Actor {
	return Actor{EmployeeID: c.EmployeeID, Role: c.Role}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func GenerateToken(secret string, actor Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		EmployeeID: actor.EmployeeID,
		Role:       actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.EmployeeID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.EmployeeID == "" || !ValidRole(claims.Role) {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}
