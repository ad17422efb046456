package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	s := &server{config: Config{JwtSecret: "secret"}}
	valid, err := NewSessionToken("secret", "session-1", time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", "session-1", -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewSessionToken("other", "session-1", time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "session-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "session-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		ok     bool
	}{
		{"bearer header", "Bearer " + valid, "", true},
		{"bare header", valid, "", true},
		{"query token", "", valid, true},
		{"missing", "", "", false},
		{"expired", "Bearer " + expired, "", false},
		{"wrong key", "Bearer " + otherKey, "", false},
		{"no expiry", "Bearer " + noExpiry, "", false},
		{"wrong algorithm", "Bearer " + hs512, "", false},
		{"garbage", "Bearer not-a-token", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			r := httptest.NewRequest("GET", target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			sessionId, err := s.auth(r)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "session-1", sessionId)
		})
	}
}
