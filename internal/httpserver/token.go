// internal/httpserver/token.go
//
// Per-game bearer tokens (HS256). A token names one game id in its subject
// and authorizes requests against that game only.
package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL bounds how long a game token stays valid.
const tokenTTL = 24 * time.Hour

// signGameToken creates an HS256 JWT binding the bearer to gameID.
func (s *Server) signGameToken(gameID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gameID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return t.SignedString([]byte(s.opts.JWTSecret))
}

// authorizeGame reports whether the request carries a valid token for gameID.
func (s *Server) authorizeGame(r *http.Request, gameID string) error {
	raw := bearer(r)
	if raw == "" {
		return errors.New("missing token")
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return errors.New("invalid token")
	}
	if claims.Subject != gameID {
		return errors.New("token is for another game")
	}
	return nil
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
