package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrSecretNotInitialized = errors.New("JWT secret not initialized")
	ErrWrongTokenType       = errors.New("wrong token type")
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer signs and validates access and refresh tokens
type Issuer struct {
	secret          []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	now             func() time.Time
}

// NewIssuer creates a token issuer with the given HMAC secret and lifetimes
func NewIssuer(secret string, accessLifetime, refreshLifetime time.Duration) *Issuer {
	return &Issuer{
		secret:          []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		now:             time.Now,
	}
}

// WithClock overrides the time source (tests)
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// RefreshLifetime returns how long refresh tokens stay valid
func (i *Issuer) RefreshLifetime() time.Duration {
	return i.refreshLifetime
}

// GenerateAccessToken creates a short-lived access token for a user
func (i *Issuer) GenerateAccessToken(userID uint) (string, error) {
	return i.generate(userID, TokenTypeAccess, i.accessLifetime)
}

// GenerateRefreshToken creates a refresh token for a user
func (i *Issuer) GenerateRefreshToken(userID uint) (string, error) {
	return i.generate(userID, TokenTypeRefresh, i.refreshLifetime)
}

func (i *Issuer) generate(userID uint, tokenType string, lifetime time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrSecretNotInitialized
	}

	now := i.now()
	claims := JWTClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken validates a JWT token of the expected type and returns the claims
func (i *Issuer) ValidateToken(tokenString, expectedType string) (*JWTClaims, error) {
	if len(i.secret) == 0 {
		return nil, ErrSecretNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}
