package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func fastBackoff(attempts int) *Backoff {
	return &Backoff{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   1.5,
		MaxAttempts:  attempts,
	}
}

func TestBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return fmt.Errorf("refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestBackoff_PermanentError(t *testing.T) {
	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(_ int) error {
		calls++
		return Permanent(fmt.Errorf("bad address"))
	})
	if err == nil || err.Error() != "bad address" {
		t.Fatalf("expected 'bad address', got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error should stop after 1 call, got %d", calls)
	}
}

func TestBackoff_MaxAttempts(t *testing.T) {
	calls := 0
	err := fastBackoff(3).Do(context.Background(), func(_ int) error {
		calls++
		return fmt.Errorf("always fails")
	})
	if err == nil || !strings.Contains(err.Error(), "max attempts (3)") {
		t.Fatalf("expected max attempts error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestBackoff_SingleAttemptReturnsRawError(t *testing.T) {
	inner := fmt.Errorf("refused")
	err := fastBackoff(0).Do(context.Background(), func(_ int) error { return inner })
	if !errors.Is(err, inner) || err != inner {
		t.Fatalf("expected raw inner error, got %v", err)
	}
}

func TestBackoff_ShouldRetry(t *testing.T) {
	b := fastBackoff(5)
	b.ShouldRetry = func(err error) bool { return err.Error() == "transient" }

	calls := 0
	err := b.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt == 1 {
			return fmt.Errorf("transient")
		}
		return fmt.Errorf("fatal")
	})
	if err == nil || err.Error() != "fatal" {
		t.Fatalf("expected fatal, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestBackoff_OnRetry(t *testing.T) {
	b := fastBackoff(3)
	var attempts []int
	b.OnRetry = func(attempt int, _ error, wait time.Duration) {
		attempts = append(attempts, attempt)
		if wait <= 0 {
			t.Errorf("wait should be positive, got %v", wait)
		}
	}
	_ = b.Do(context.Background(), func(_ int) error { return fmt.Errorf("x") })

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestBackoff_ContextCancel(t *testing.T) {
	b := &Backoff{InitialDelay: time.Hour, MaxAttempts: 5}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := b.Do(ctx, func(_ int) error { return fmt.Errorf("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastBackoff(3).Do(ctx, func(_ int) error { calls++; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("fn should not run, got %d calls", calls)
	}
}

func TestAddJitter_Bounds(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		j := addJitter(d)
		if j < 75*time.Millisecond || j > 125*time.Millisecond {
			t.Fatalf("jitter %v out of ±25%% bounds", j)
		}
	}
}
