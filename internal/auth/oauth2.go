package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig holds configuration for the OAuth2 client
// credentials grant.
type ClientCredentialsConfig struct {
	ClientID  string   `mapstructure:"client_id"`
	ClientSec string   `mapstructure:"client_secret"`
	TokenURL  string   `mapstructure:"token_url"`
	Scopes    []string `mapstructure:"scopes"`
}

type clientCredentialsMethod struct{ c ClientCredentialsConfig }

func (m clientCredentialsMethod) Acquire(ctx context.Context) (string, error) {
	clientID := strings.TrimSpace(m.c.ClientID)
	clientSecret := strings.TrimSpace(m.c.ClientSec)
	tokenURL := strings.TrimSpace(m.c.TokenURL)
	if tokenURL == "" {
		return "", errors.New("oauth2: token_url is required")
	}
	if clientID == "" || clientSecret == "" {
		return "", errors.New("oauth2: client_id and client_secret are required")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       m.c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", err
	}
	if !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return "", errors.New("oauth2: received invalid token")
	}
	typ := strings.TrimSpace(tok.TokenType)
	if typ == "" {
		typ = "Bearer"
	}
	return typ + " " + tok.AccessToken, nil
}
