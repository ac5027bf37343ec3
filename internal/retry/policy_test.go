package retry

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/pagecrop/internal/config"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffNone {
		t.Fatalf("expected none default mode got %s", p.Mode)
	}
	if p.MaxAttempts != 5 {
		t.Fatalf("expected max attempts 5 got %d", p.MaxAttempts)
	}
	for i := 1; i <= 5; i++ {
		if d := p.Delay(i); d != 0 {
			t.Fatalf("default policy retry %d expected no delay got %v", i, d)
		}
	}
}

// TestShouldRetry checks the attempt bound.
func TestShouldRetry(t *testing.T) {
	p := DefaultPolicy()
	for n := 1; n < 5; n++ {
		if !p.ShouldRetry(n) {
			t.Fatalf("attempt %d should be retried", n)
		}
	}
	if p.ShouldRetry(5) {
		t.Fatalf("attempt 5 must be final")
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 3)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxAttempts != 3 {
		t.Fatalf("expected max attempts 3 got %d", p.MaxAttempts)
	}

	fromCfg := FromConfig(config.RetryConfig{MaxAttempts: 0, Backoff: "weird"})
	if fromCfg.MaxAttempts != 5 || fromCfg.Mode != config.RetryBackoffNone {
		t.Fatalf("unexpected fallback policy %+v", fromCfg)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		if d := fixed.Delay(i); d != 100*time.Millisecond {
			t.Fatalf("fixed attempt %d expected 100ms got %v", i, d)
		}
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 250 * time.Millisecond},
		{4, 250 * time.Millisecond},
	}
	for _, c := range cases {
		if got := linear.Delay(c.attempt); got != c.want {
			t.Fatalf("linear attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	expCases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 50 * time.Millisecond},
		{2, 100 * time.Millisecond},
		{3, 160 * time.Millisecond},
		{4, 160 * time.Millisecond},
	}
	for _, c := range expCases {
		if got := exp.Delay(c.attempt); got != c.want {
			t.Fatalf("exp attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}
	if d := exp.Delay(0); d != 0 {
		t.Fatalf("attempt 0 expected 0 got %v", d)
	}
}

// TestValidate covers validation error paths.
func TestValidate(t *testing.T) {
	if err := (Policy{Mode: config.RetryBackoffNone, MaxAttempts: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero attempts")
	}
	if err := (Policy{Mode: config.RetryBackoffLinear, Initial: 0, Max: time.Second, MaxAttempts: 1}).Validate(); err == nil {
		t.Fatalf("expected error for zero initial")
	}
	if err := (Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 0, MaxAttempts: 1}).Validate(); err == nil {
		t.Fatalf("expected error for zero max")
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
