package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncerr "connstate/internal/errors"
)

func TestBreaker_PassesThrough(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "t"})
	require.NoError(t, b.Execute(func() error { return nil }))

	inner := fmt.Errorf("refused")
	err := b.Execute(func() error { return inner })
	assert.ErrorIs(t, err, inner)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []gobreaker.State
	b := NewBreaker(BreakerConfig{
		Name:         "t",
		MaxFailures:  2,
		ResetTimeout: time.Minute,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		},
	})

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return fmt.Errorf("fail") })
	}
	require.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.False(t, called, "fn must not run while open")
	assert.True(t, errors.Is(err, ncerr.ErrCircuitOpen))
	assert.True(t, IsPermanent(err))
}

func TestBreaker_WithBackoffStopsWhenOpen(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "t", MaxFailures: 1, ResetTimeout: time.Minute})
	calls := 0
	err := fastBackoff(5).Do(context.Background(), func(_ int) error {
		return b.Execute(func() error {
			calls++
			return fmt.Errorf("refused")
		})
	})
	assert.ErrorIs(t, err, ncerr.ErrCircuitOpen)
	assert.Equal(t, 1, calls)
}
