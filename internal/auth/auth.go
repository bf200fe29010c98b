package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Method acquires a header value to inject into step requests, e.g.
// "Basic ..." or "Bearer ...". Header placement is handled by the caller.
type Method interface {
	Acquire(ctx context.Context) (value string, err error)
}

// Factory builds a Method from a loosely-typed spec map. Decoding the map
// into a concrete config struct is the factory's job.
type Factory func(spec map[string]interface{}) (Method, error)

var providers = map[string]Factory{}

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register registers a provider factory under a type key (e.g. "basic",
// "oauth2", "jwt"). The key is normalized to lower-case.
func Register(typ string, f Factory) {
	key := normalizeKey(typ)
	if key == "" || f == nil {
		return
	}
	providers[key] = f
}

// Acquire builds a Method for the provider type and acquires a value.
func Acquire(ctx context.Context, typ string, spec map[string]interface{}) (string, error) {
	f, ok := providers[normalizeKey(typ)]
	if !ok {
		return "", errors.New("auth: unsupported provider type: " + typ)
	}
	m, err := f(spec)
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return m.Acquire(ctx)
}

// AcquireAndStore acquires a value and stores it in the shared token store
// under the given logical name, so declarative steps can reference it.
func AcquireAndStore(ctx context.Context, typ, name string, spec map[string]interface{}) (string, error) {
	v, err := Acquire(ctx, typ, spec)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) != "" {
		SetToken(name, v)
	}
	return v, nil
}

// Auth is the declarative form of one credential, as it appears in config.
type Auth struct {
	Type   string                 `mapstructure:"type" yaml:"type"`
	Name   string                 `mapstructure:"name" yaml:"name"`
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

// Acquire resolves this credential and stores it under its name.
func (a *Auth) Acquire(ctx context.Context) (string, error) {
	if a == nil {
		return "", nil
	}
	if strings.TrimSpace(a.Type) == "" {
		return "", fmt.Errorf("auth: missing type")
	}
	return AcquireAndStore(ctx, a.Type, a.Name, a.Config)
}

func init() {
	Register("basic", func(spec map[string]interface{}) (Method, error) {
		var c BasicConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return basicMethod{c: c}, nil
	})

	Register("oauth2", func(spec map[string]interface{}) (Method, error) {
		var c ClientCredentialsConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return clientCredentialsMethod{c: c}, nil
	})

	Register("jwt", func(spec map[string]interface{}) (Method, error) {
		var c JWTConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return jwtMethod{c: c}, nil
	})
}
