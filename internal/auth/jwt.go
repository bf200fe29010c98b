package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures locally-issued HS256 tokens. Useful against services
// that accept a pre-shared secret instead of running a token endpoint.
type JWTConfig struct {
	// Secret is the HMAC key used for HS256 signing (required).
	Secret string `mapstructure:"secret"`
	// TTLSeconds controls expiration when Exp is not given. Default 5 minutes.
	TTLSeconds int64 `mapstructure:"ttl_seconds"`

	Subject   string   `mapstructure:"sub"`
	Issuer    string   `mapstructure:"iss"`
	Audience  []string `mapstructure:"aud"`
	NotBefore int64    `mapstructure:"nbf"`
	ExpiresAt int64    `mapstructure:"exp"`

	// Custom holds arbitrary extra claims.
	Custom map[string]interface{} `mapstructure:"custom"`
}

type jwtMethod struct{ c JWTConfig }

func (m jwtMethod) Acquire(_ context.Context) (string, error) {
	tok, err := m.c.Issue()
	if err != nil {
		return "", err
	}
	return "Bearer " + tok, nil
}

// Issue creates a signed JWT token string from the config.
func (c JWTConfig) Issue() (string, error) {
	if c.Secret == "" {
		return "", errors.New("jwt: secret required")
	}
	now := time.Now()
	exp := c.ExpiresAt
	if exp == 0 {
		ttl := c.TTLSeconds
		if ttl <= 0 {
			ttl = 300
		}
		exp = now.Unix() + ttl
	}
	claims := jwt.MapClaims{}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if len(c.Audience) > 0 {
		claims["aud"] = c.Audience
	}
	if c.NotBefore > 0 {
		claims["nbf"] = c.NotBefore
	}
	claims["iat"] = now.Unix()
	claims["exp"] = exp
	for k, v := range c.Custom {
		claims[k] = v
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.Secret))
}
