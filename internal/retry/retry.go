package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mimicbot/mimic/internal/common"
)

// Config holds configuration for transient-failure retries on store writes.
type Config struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// RetryableErrors are error substrings that trigger a retry.
	RetryableErrors []string
}

// Default returns the retry configuration used for run-history writes.
func Default() *Config {
	return &Config{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: []string{
			"connection refused",
			"connection reset",
			"temporary failure",
			"deadlock",
			"database is locked",
			"database table is locked",
			"broken pipe",
		},
	}
}

func (c *Config) retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range c.RetryableErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Config) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return c.InitialDelay
	}
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1)))
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Do executes op, retrying transient failures with exponential backoff.
func Do(ctx context.Context, config *Config, op func() error) error {
	if config == nil {
		config = Default()
	}
	logger := common.GetLogger().WithComponent("store-retry")

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				logger.Info("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}
		lastErr = err
		if attempt == config.MaxRetries {
			break
		}
		if !config.retryable(err) {
			return err
		}
		d := config.delay(attempt)
		logger.Warn("operation failed, retrying", "error", err, "attempt", attempt+1, "retry_delay", d)
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation cancelled during retry: %w", ctx.Err())
		case <-time.After(d):
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}
