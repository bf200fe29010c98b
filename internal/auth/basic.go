package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// BasicConfig holds configuration for Basic authentication.
type BasicConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type basicMethod struct{ c BasicConfig }

func (m basicMethod) Acquire(_ context.Context) (string, error) {
	u := strings.TrimSpace(m.c.Username)
	p := strings.TrimSpace(m.c.Password)
	if u == "" || p == "" {
		return "", errors.New("basic: username and password are required")
	}
	cred := base64.StdEncoding.EncodeToString([]byte(u + ":" + p))
	return "Basic " + cred, nil
}
