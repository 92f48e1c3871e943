// Package session binds one state.Connection to one live network
// link and plays the external collaborator the state machine expects:
// it dials while the connection is Connecting and raises Establish
// once the handshake succeeds.
//
// The state machine decides whether an operation is allowed; the
// session performs the I/O that an accepted operation implies.
package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	ncerr "connstate/internal/errors"
	"connstate/internal/metrics"
	"connstate/internal/retry"
	"connstate/internal/state"
	"connstate/internal/transport"
	"connstate/util"
)

// Config describes the link a Session drives.
type Config struct {
	Name    string
	Network string // "tcp" or "udp"
	Address string // host:port
	Dialer  transport.Dialer
	Backoff *retry.Backoff // nil uses retry.DefaultBackoff
	Breaker *retry.Breaker // nil creates a per-session breaker
	Logger  *util.Logger
	Metrics *metrics.Collector
	// OnDispatch, when set, receives every dispatch result in order.
	// It runs with the session lock held and must not call back into
	// the Session.
	OnDispatch func(state.Result)
}

// Session encapsulates a Connection and the link it controls.
// All methods are safe for concurrent use.
type Session struct {
	cfg     Config
	backoff *retry.Backoff
	breaker *retry.Breaker
	logger  *util.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	conn    *state.Connection
	link    net.Conn
	attempt uint64 // bumped by every accepted connect and every close
}

// New creates a Session whose Connection starts Disconnected.
func New(cfg Config) *Session {
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}
	if cfg.Logger == nil {
		cfg.Logger = util.NewLogger(0)
	}
	s := &Session{
		cfg:     cfg,
		backoff: cfg.Backoff,
		breaker: cfg.Breaker,
		logger:  cfg.Logger.Named(cfg.Name),
		metrics: cfg.Metrics,
		conn:    state.New(cfg.Name),
	}
	if s.backoff == nil {
		s.backoff = retry.DefaultBackoff()
	}
	if s.breaker == nil {
		s.breaker = retry.NewBreaker(retry.BreakerConfig{
			Name: cfg.Address,
			OnStateChange: func(name string, from, to gobreaker.State) {
				s.logger.Warn("circuit %s: %s → %s", name, from, to)
			},
		})
	}
	s.conn.OnTransition(s.observe)
	return s
}

// Mode returns the current mode of the underlying Connection.
func (s *Session) Mode() state.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Mode()
}

// ID returns the Connection's identifier.
func (s *Session) ID() string { return s.conn.ID.String() }

// Open runs connect and then performs the handshake.  A rejected
// connect is returned as a *errors.RejectionError without dialing.
// On success the Connection is Connected; on any failure (including
// ctx cancellation) the attempt is cancelled and the Connection is
// Disconnected again.
func (s *Session) Open(ctx context.Context) (state.Result, error) {
	s.mu.Lock()
	res := s.conn.Connect()
	if !res.Accepted() {
		s.mu.Unlock()
		return res, res.Err()
	}
	s.attempt++
	token := s.attempt
	s.mu.Unlock()

	link, err := s.dial(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.attempt {
		// Close cancelled this attempt while dialing; a later Open may
		// already own the Connection.
		if link != nil {
			link.Close()
		}
		return res, &ncerr.RejectionError{
			Op:     state.OpEstablish.String(),
			Mode:   s.conn.Mode().String(),
			Reason: "connection attempt was cancelled",
		}
	}

	if err != nil {
		s.metrics.HandshakeFailed()
		s.metrics.RecordError(err.Error())
		s.conn.Disconnect()
		return res, err
	}

	est := s.conn.Establish()
	if !est.Accepted() {
		link.Close()
		return est, est.Err()
	}
	s.link = link
	s.metrics.HandshakeSucceeded()
	return est, nil
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	if s.cfg.Dialer == nil {
		return nil, &ncerr.NetworkError{Op: "dial", Addr: s.cfg.Address,
			Err: fmt.Errorf("session %s: no dialer configured", s.cfg.Name)}
	}

	b := *s.backoff
	b.ShouldRetry = ncerr.IsRetryable
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		s.logger.Verbose("handshake attempt %d failed: %v (retrying in %v)",
			attempt, err, wait.Truncate(time.Millisecond))
	}

	var link net.Conn
	err := b.Do(ctx, func(attempt int) error {
		return s.breaker.Execute(func() error {
			s.metrics.DialAttempt()
			s.logger.Debug("dialing %s %s (attempt %d)", s.cfg.Network, s.cfg.Address, attempt)
			c, err := s.cfg.Dialer.Dial(ctx, s.cfg.Network, s.cfg.Address)
			if err != nil {
				return ncerr.Wrap("dial", s.cfg.Address, err)
			}
			link = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("handshake with %s complete", link.RemoteAddr())
	return link, nil
}

// Send dispatches payload.  When accepted the payload is written to
// the link followed by a newline; a failed write tears the link down.
func (s *Session) Send(payload string) (state.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.conn.SendData(payload)
	if !res.Accepted() {
		return res, res.Err()
	}

	n, err := fmt.Fprintf(s.link, "%s\n", payload)
	if err != nil {
		s.metrics.RecordError(err.Error())
		s.teardown()
		return res, ncerr.Wrap("write", s.cfg.Address, err)
	}
	s.metrics.PayloadSent(int64(n))
	return res, nil
}

// Close disconnects and releases the link and dialer.  Calling it on
// an already disconnected session reports the rejection without error.
func (s *Session) Close() state.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.conn.Disconnect()
	s.attempt++
	s.closeLink()
	return res
}

// teardown moves a Connected session back to Disconnected after a
// link failure.  Callers hold s.mu.
func (s *Session) teardown() {
	s.conn.Disconnect()
	s.attempt++
	s.closeLink()
}

func (s *Session) closeLink() {
	if s.link != nil {
		s.link.Close()
		s.link = nil
	}
	if s.cfg.Dialer != nil {
		if err := s.cfg.Dialer.Close(); err != nil {
			s.logger.Debug("dialer close: %v", err)
		}
	}
}

func (s *Session) observe(r state.Result) {
	s.metrics.RecordDispatch(r.Accepted(), r.Changed(), r.To.String())
	if s.cfg.OnDispatch != nil {
		s.cfg.OnDispatch(r)
	}
	if r.Accepted() {
		s.logger.Verbose("%s: %s → %s", r.Op, r.From, r.To)
	} else {
		s.logger.Info("%s rejected while %s: %s", r.Op, r.From, r.Notice)
	}
}
