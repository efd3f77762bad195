package retry

import (
	"testing"
	"time"
)

func TestFixedAttempts(t *testing.T) {
	p := FixedAttempts{MaxAttempts: 3}
	for i := 0; i < 3; i++ {
		d, ok := p.NextDelay(i, 0)
		if !ok || d != 0 {
			t.Fatalf("attempt %d: expected (0, true), got (%v, %v)", i, d, ok)
		}
	}
	if _, ok := p.NextDelay(3, 0); ok {
		t.Fatal("expected give up at attempt 3")
	}
}

func TestBackoffLinear(t *testing.T) {
	p := Backoff{Delay: time.Second, Linear: true}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 3 * time.Second},
	}
	for _, c := range cases {
		d, ok := p.NextDelay(c.attempt, 0)
		if !ok || d != c.want {
			t.Fatalf("attempt %d: expected %v, got %v", c.attempt, c.want, d)
		}
	}
}

func TestBackoffExponential(t *testing.T) {
	p := Backoff{Delay: time.Second, Linear: false}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},       // delay/2 * (2^1 - 1) = 0.5 * 1
		{1, 1500 * time.Millisecond},      // 0.5 * (2^2 - 1) = 0.5 * 3
		{2, 3500 * time.Millisecond},      // 0.5 * (2^3 - 1) = 0.5 * 7
	}
	for _, c := range cases {
		d, ok := p.NextDelay(c.attempt, 0)
		if !ok || d != c.want {
			t.Fatalf("attempt %d: expected %v, got %v", c.attempt, c.want, d)
		}
	}
}

func TestBackoffMaxDelayCap(t *testing.T) {
	p := Backoff{Delay: time.Second, Linear: true, MaxDelay: 2 * time.Second}
	d, ok := p.NextDelay(10, 0)
	if !ok || d != 2*time.Second {
		t.Fatalf("expected capped delay 2s, got %v (ok=%v)", d, ok)
	}
}

func TestBackoffTimeoutExceeded(t *testing.T) {
	p := Backoff{Delay: time.Second, Linear: true, Timeout: 5 * time.Second}
	if _, ok := p.NextDelay(0, 6*time.Second); ok {
		t.Fatal("expected give up once elapsed exceeds timeout")
	}
}

func TestBackoffCappedToRemainingBeforeTimeout(t *testing.T) {
	p := Backoff{Delay: time.Second, Linear: true, Timeout: 5 * time.Second}
	d, ok := p.NextDelay(10, 4*time.Second) // uncapped delay would be 11s
	if !ok {
		t.Fatal("expected retry to continue")
	}
	if d != time.Second {
		t.Fatalf("expected delay capped to 1s remaining before timeout, got %v", d)
	}
}
