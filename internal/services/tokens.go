package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService is the wire codec for session tokens: a signed JWT carrying
// the session id. The signature lets the transport layer reject tampered or
// guessed tokens before touching the session registry; revocation and role
// freshness come from the registry and the user store, never from claims.
type TokenService struct {
	Secret []byte
	Issuer string
}

func (t TokenService) Sign(sessionID, userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss": t.Issuer,
		"sub": userID,
		"sid": sessionID,
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// SessionID validates the token and extracts the session id.
func (t TokenService) SessionID(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}
	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return "", errors.New("invalid session token")
	}
	return sessionID, nil
}
