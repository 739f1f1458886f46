package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

var ErrInvalidToken = errors.New("invalid access token")

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type AccessTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// MintAccessToken signs a token whose subject is the principal's user id.
func MintAccessToken(cfg TokenConfig, now time.Time, p Principal) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		return "", fmt.Errorf("jwt ttl must be positive")
	}
	if p.UserID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if !IsValidRole(p.Role) {
		return "", fmt.Errorf("invalid role %q", p.Role)
	}

	claims := AccessTokenClaims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the signature, expiry and issuer and returns the caller.
func ParseAccessToken(cfg TokenConfig, tokenString string) (Principal, error) {
	if cfg.Secret == "" {
		return Principal{}, fmt.Errorf("jwt secret is required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || !IsValidRole(claims.Role) {
		return Principal{}, fmt.Errorf("%w: missing subject or unknown role", ErrInvalidToken)
	}

	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
