package resilience

import (
	"errors"
	"fmt"
	"time"
)

// CircuitBreakerConfig tunes a breaker guarding an optional dependency such as the
// shared ranking cache. Reads fall back to recomputing boards while it is open.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	// OpenTimeout is how long the circuit stays open before probing again.
	OpenTimeout time.Duration
	// HalfOpenMaxReq caps concurrent trial requests while half-open.
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate reports every out-of-range field.
func (c CircuitBreakerConfig) Validate() error {
	var errs []error
	if c.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold))
	}
	if c.OpenTimeout <= 0 {
		errs = append(errs, fmt.Errorf("open timeout must be > 0, got %s", c.OpenTimeout))
	}
	if c.HalfOpenMaxReq < 1 {
		errs = append(errs, fmt.Errorf("half-open max requests must be >= 1, got %d", c.HalfOpenMaxReq))
	}
	return errors.Join(errs...)
}

// NormalizeCircuitBreakerConfig replaces unset or invalid fields with defaults.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
