package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/config"
)

var fast = config.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "flaky", fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d, want nil and 3", err, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Retry(context.Background(), "broken", fast, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != fast.MaxAttempts {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	bad := errors.New("bad credentials")
	calls := 0
	err := Retry(context.Background(), "auth", fast, func(context.Context) error {
		calls++
		return Permanent(bad)
	})
	if err != bad || calls != 1 {
		t.Errorf("err=%v calls=%d, want the unwrapped error after one call", err, calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "cancelled", config.RetryConfig{MaxAttempts: 5, InitialDelay: time.Second}, func(context.Context) error {
		return errors.New("unreachable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestComputeDelayCapped(t *testing.T) {
	cfg := config.RetryConfig{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: 3 * time.Second}
	if d := computeDelay(8, cfg); d > cfg.MaxDelay {
		t.Errorf("delay %v exceeds max %v", d, cfg.MaxDelay)
	}
}
