// Package metrics provides lightweight, lock-free counters for a
// connstate run.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Collector tracks dispatch and handshake statistics.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	dispatches   atomic.Int64
	transitions  atomic.Int64
	rejections   atomic.Int64
	payloadsSent atomic.Int64
	bytesOut     atomic.Int64
	dialAttempts atomic.Int64
	handshakes   atomic.Int64
	handshakeErr atomic.Int64
	errorsTotal  atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	mode         string
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now(), mode: "disconnected"}
}

// ── Dispatch metrics ─────────────────────────────────────────────────

// RecordDispatch counts one operation dispatched to the state machine
// and the mode it left the connection in.
func (c *Collector) RecordDispatch(accepted, changed bool, mode string) {
	if c == nil {
		return
	}
	c.dispatches.Add(1)
	if changed {
		c.transitions.Add(1)
	}
	if !accepted {
		c.rejections.Add(1)
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// Transitions returns the number of dispatches that changed mode.
func (c *Collector) Transitions() int64 {
	if c == nil {
		return 0
	}
	return c.transitions.Load()
}

// Rejections returns the number of rejected dispatches.
func (c *Collector) Rejections() int64 {
	if c == nil {
		return 0
	}
	return c.rejections.Load()
}

// ── Payload metrics ──────────────────────────────────────────────────

// PayloadSent records one payload of n bytes written to the link.
func (c *Collector) PayloadSent(n int64) {
	if c == nil {
		return
	}
	c.payloadsSent.Add(1)
	c.bytesOut.Add(n)
}

// TotalBytesOut returns total bytes written.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Handshake metrics ────────────────────────────────────────────────

// DialAttempt records one dial attempt by the handshake driver.
func (c *Collector) DialAttempt() {
	if c == nil {
		return
	}
	c.dialAttempts.Add(1)
}

// HandshakeSucceeded records a completed handshake.
func (c *Collector) HandshakeSucceeded() {
	if c == nil {
		return
	}
	c.handshakes.Add(1)
}

// HandshakeFailed records a handshake that ended in Disconnected.
func (c *Collector) HandshakeFailed() {
	if c == nil {
		return
	}
	c.handshakeErr.Add(1)
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Mode             string `json:"mode"`
	Dispatches       int64  `json:"dispatches"`
	Transitions      int64  `json:"transitions"`
	Rejections       int64  `json:"rejections"`
	PayloadsSent     int64  `json:"payloads_sent"`
	BytesOut         int64  `json:"bytes_out"`
	DialAttempts     int64  `json:"dial_attempts"`
	Handshakes       int64  `json:"handshakes"`
	HandshakeErrors  int64  `json:"handshake_errors"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Millisecond).String(),
		Mode:            c.mode,
		Dispatches:      c.dispatches.Load(),
		Transitions:     c.transitions.Load(),
		Rejections:      c.rejections.Load(),
		PayloadsSent:    c.payloadsSent.Load(),
		BytesOut:        c.bytesOut.Load(),
		DialAttempts:    c.dialAttempts.Load(),
		Handshakes:      c.handshakes.Load(),
		HandshakeErrors: c.handshakeErr.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
