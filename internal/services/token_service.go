package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenMalformed is returned when a token's structure or signature
// is invalid. Expiry is a separate concern checked by IsValid.
var ErrTokenMalformed = errors.New("token malformed")

// Token is an issued bearer token with its absolute expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService creates and verifies HMAC-signed, time-bounded bearer
// tokens. It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token binding subject, valid for the configured lifetime.
func (s *TokenService) Issue(subject string) (Token, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature and structure only and returns the embedded
// claims. Callers must check expiry separately; IsValid folds both in.
func (s *TokenService) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// IsValid reports whether tokenString verifies, binds expectedSubject,
// and has not expired. This two-part check is the whole validity
// contract: there is no revocation and no refresh.
func (s *TokenService) IsValid(tokenString, expectedSubject string) bool {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now())
}
