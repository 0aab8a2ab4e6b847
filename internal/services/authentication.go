package services

import (
	"errors"

	"flagquiz/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{secret}, nil
}

func (authentication *Authentication) CreateToken(user *models.AuthUser) (string, error) {
	claims := &CustomClaims{
		ID:            user.ID,
		Username:      user.Username,
		EmailVerified: user.EmailVerified,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.AuthUser, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(authentication.secret), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || !jwtToken.Valid {
		return nil, errors.New("invalid token claims")
	}

	return &models.AuthUser{
		ID:            claims.ID,
		Username:      claims.Username,
		EmailVerified: claims.EmailVerified,
	}, nil
}
