package main

import (
	"fmt"

	"github.com/mimicbot/mimic/internal/auth"
	"github.com/mimicbot/mimic/internal/store"
	"github.com/spf13/viper"
)

// FlowConfig locates the step definitions and controls flow execution.
type FlowConfig struct {
	Dir   string `mapstructure:"dir"`
	Start string `mapstructure:"start"`
	// MaxSteps bounds the flow; 0 uses the built-in default.
	MaxSteps          int  `mapstructure:"max_steps"`
	FollowErrorRoutes bool `mapstructure:"follow_error_routes"`
}

// StoreConfig wires the run-history store.
type StoreConfig struct {
	store.Config     `mapstructure:",squash"`
	SaveResponseBody bool `mapstructure:"save_response_body"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConfigDoc is the root of the YAML configuration file.
type ConfigDoc struct {
	Flow    FlowConfig    `mapstructure:"flow"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    []auth.Auth   `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	// CookiesExport, when set, writes the worker's cookie jar to this path
	// after the flow finishes.
	CookiesExport string `mapstructure:"cookies_export"`
}

// loadConfig reads and decodes the config file at path.
func loadConfig(path string) (*ConfigDoc, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc ConfigDoc
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if doc.Flow.Dir == "" {
		return nil, fmt.Errorf("config: flow.dir is required")
	}
	if doc.Flow.Start == "" {
		return nil, fmt.Errorf("config: flow.start is required")
	}
	return &doc, nil
}
