package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback; production must set JWT_SECRET.
		secret = "SmoFloorDevSecret"
	}
	JWTSecret = []byte(secret)
}

type CustomClaims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	EmployeeID *uint  `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues the signed JWT for a user session. EmployeeID is set
// for floor accounts logging in from the app, nil for office users.
func GenerateToken(userID uint, role string, employeeID *uint) (string, error) {
	claims := &CustomClaims{
		UserID:     userID,
		Role:       role,
		EmployeeID: employeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "cutmap-smo",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
