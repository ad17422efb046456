package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// NewSessionToken signs an HS256 token whose subject names the session.
func NewSessionToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}

// auth extracts the session id from the bearer token of r.
func (s *server) auth(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("%w: no authorization", ErrUnauthorized)
	}
	validToken, err := validateJwt(token, []byte(s.config.JwtSecret))
	if err != nil || !validToken.Valid {
		return "", fmt.Errorf("%w: invalid token: %v", ErrUnauthorized, err)
	}
	sessionId, err := validToken.Claims.GetSubject()
	if err != nil || sessionId == "" {
		return "", fmt.Errorf("%w: session id not found", ErrUnauthorized)
	}
	return sessionId, nil
}

func validateJwt(tokenString string, secret []byte) (*jwt.Token, error) {
	return jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
}
