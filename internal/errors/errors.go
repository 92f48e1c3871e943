// Package errors provides domain-specific error types for connstate.
//
// These types carry structured context (operation, mode, address,
// retryability) that helps callers decide how to handle failures and
// provides better diagnostics than plain string wrapping.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrRejected     = errors.New("operation rejected")
	ErrNotConnected = errors.New("not connected")
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrTimeout      = errors.New("operation timed out")
	ErrAuthFailed   = errors.New("authentication failed")
)

// ── Structured error types ───────────────────────────────────────────

// RejectionError is a policy rejection: the operation is not allowed
// in the connection's current mode, which was left unchanged.
type RejectionError struct {
	Op     string // "connect", "disconnect", "send", "establish"
	Mode   string // mode the operation was attempted in
	Reason string // notice reported to the caller
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected while %s: %s", e.Op, e.Mode, e.Reason)
}

// Is makes every RejectionError match ErrRejected, and a rejected send
// also match ErrNotConnected.
func (e *RejectionError) Is(target error) bool {
	switch target {
	case ErrRejected:
		return true
	case ErrNotConnected:
		return e.Op == "send"
	}
	return false
}

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "write", "handshake"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrTimeout when the underlying failure was a deadline or
// an I/O timeout.
func (e *NetworkError) Is(target error) bool {
	if target != ErrTimeout {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "channel"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsRejection reports whether err is a state-machine policy rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}

// classifyRetryable inspects standard library error types.  Refused
// and timed-out dials are worth another attempt; everything else
// (bad address, auth failure) is not.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		if opErr.Op == "dial" {
			var dnsErr *net.DNSError
			if errors.As(opErr.Err, &dnsErr) {
				return dnsErr.IsTemporary
			}
			return true
		}
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use connstate/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }
