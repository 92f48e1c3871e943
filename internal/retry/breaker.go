package retry

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	ncerr "connstate/internal/errors"
)

// BreakerConfig configures a [Breaker].
type BreakerConfig struct {
	// Name identifies the breaker in state-change callbacks.
	Name string
	// MaxFailures is the number of consecutive failures that opens the
	// circuit (default 5).
	MaxFailures uint32
	// ResetTimeout is how long the circuit stays open before allowing a
	// probe (default 30s).
	ResetTimeout time.Duration
	// OnStateChange is called on every breaker transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// Breaker stops dialing an endpoint that keeps failing.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker from cfg, applying defaults for zero
// fields.
func NewBreaker(cfg BreakerConfig) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.ResetTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Breaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.Name,
			Timeout: timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

// Execute runs fn through the breaker.  While the circuit is open fn
// is not called and the returned error matches ErrCircuitOpen; it is
// also marked permanent so a surrounding Backoff stops immediately.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Permanent(errors.Join(ncerr.ErrCircuitOpen, err))
	}
	return err
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }
