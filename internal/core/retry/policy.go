package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy defines retry behavior.
type Policy struct {
	MaxRetries        int           `yaml:"max_retries"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxRetries:        3,
	BaseDelay:         1 * time.Second,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2.0,
}

// MaxJitter is the upper bound of the jitter fraction added to each delay.
const MaxJitter = 0.10

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	var errs []error
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must be >= 0, got %d", p.MaxRetries))
	}
	if p.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("base_delay must be > 0, got %v", p.BaseDelay))
	}
	if p.MaxDelay < p.BaseDelay {
		errs = append(errs, fmt.Errorf("max_delay %v must be >= base_delay %v", p.MaxDelay, p.BaseDelay))
	}
	if p.BackoffMultiplier < 1 || math.IsNaN(p.BackoffMultiplier) {
		errs = append(errs, fmt.Errorf("backoff_multiplier must be >= 1, got %v", p.BackoffMultiplier))
	}
	return errors.Join(errs...)
}

// Delay returns the wait before retry n (n >= 1, the second attempt overall
// is n=1) for a jitter fraction in [0, MaxJitter]:
//
//	min(BaseDelay * BackoffMultiplier^(n-1) * (1 + jitter), MaxDelay)
func (p Policy) Delay(n int, jitter float64) time.Duration {
	if n < 1 {
		return 0
	}
	if jitter < 0 {
		jitter = 0
	}
	if jitter > MaxJitter {
		jitter = MaxJitter
	}

	raw := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(n-1))
	delay := raw + raw*jitter
	if delay > float64(p.MaxDelay) || math.IsInf(delay, 0) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}
