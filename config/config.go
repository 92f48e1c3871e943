// Package config defines the runtime configuration for connstate and
// provides helpers for parsing script steps and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "connstate/internal/errors"
	"connstate/internal/state"
)

// Config holds every tuneable for a single connstate run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Name    string // label used in log lines
	Host    string // empty → script mode
	Port    int
	UDP     bool
	Timeout time.Duration // per-dial timeout
	Retries int           // dial attempts per handshake, including the first

	// ── Script mode ──────────────────────────────────────────────────
	Steps []Step

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose     int
	ShowTable   bool
	ShowMetrics bool
}

// LinkMode reports whether the run drives a real link rather than a
// script.
func (c *Config) LinkMode() bool { return c.Host != "" }

// ── Script steps ─────────────────────────────────────────────────────

// Step is one scripted operation.  Payload is used only by send.
type Step struct {
	Op      state.Op
	Payload string
}

func (s Step) String() string {
	if s.Op == state.OpSend {
		return s.Op.String() + ":" + s.Payload
	}
	return s.Op.String()
}

// ParseStep accepts "connect", "disconnect", "establish", "send" or
// "send:<payload>".
func ParseStep(spec string) (Step, error) {
	name, payload, hasPayload := strings.Cut(strings.TrimSpace(spec), ":")
	op, err := state.ParseOp(strings.ToLower(name))
	if err != nil {
		return Step{}, fmt.Errorf("step %q: %w", spec, err)
	}
	if hasPayload && op != state.OpSend {
		return Step{}, fmt.Errorf("step %q: only send takes a payload", spec)
	}
	return Step{Op: op, Payload: payload}, nil
}

// ParseSteps parses every spec, skipping empty entries.
func ParseSteps(specs []string) ([]Step, error) {
	steps := make([]Step, 0, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		st, err := ParseStep(spec)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ParsePort parses a destination port in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &ncerr.ConfigError{Field: "name", Message: "must not be empty"}
	}
	if c.Retries < 1 {
		return &ncerr.ConfigError{
			Field:   "retries",
			Value:   c.Retries,
			Message: "must be at least 1",
			Hint:    "1 means a single dial attempt with no retry",
		}
	}

	if c.LinkMode() {
		if c.Port < 1 || c.Port > 65535 {
			return &ncerr.ConfigError{
				Field:   "port",
				Value:   c.Port,
				Message: "out of range 1-65535",
				Hint:    "usage: connstate [options] <host> <port>",
			}
		}
		if len(c.Steps) > 0 {
			return &ncerr.ConfigError{
				Field:   "script",
				Message: "cannot be combined with a host",
				Hint:    "drop <host> <port> to replay a script, or drop --script to drive a link",
			}
		}
	} else if c.TunnelEnabled {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: "requires a destination host and port",
		}
	}

	if c.UDP && c.TunnelEnabled {
		return &ncerr.ConfigError{
			Field:   "udp",
			Message: "UDP is not supported through SSH tunnels",
		}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	return nil
}
