// Package state models the lifecycle of a single connection as a
// three-mode state machine.
//
// The transition table is plain data ([Table]) and [Transition] is a
// pure lookup over it, so the rules can be inspected and tested
// without driving a [Connection].  A Connection only stores its
// current [Mode]; modes hold no reference back to it.
package state

import "fmt"

// ── Modes ────────────────────────────────────────────────────────────

// Mode is the active behavioural configuration of a Connection.
type Mode int

const (
	// Disconnected is the initial mode: no link exists.
	Disconnected Mode = iota
	// Connecting means a handshake is underway but not complete.
	Connecting
	// Connected means the link is up and payloads are accepted.
	Connected
)

// Modes lists every mode in declaration order.
var Modes = []Mode{Disconnected, Connecting, Connected} //nolint:gochecknoglobals

func (m Mode) String() string {
	switch m {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool {
	return m >= Disconnected && m <= Connected
}

// ── Operations ───────────────────────────────────────────────────────

// Op is an event dispatched to the current mode.
type Op int

const (
	OpConnect Op = iota
	OpDisconnect
	OpSend
	// OpEstablish is raised by the handshake driver, never by the
	// machine itself.
	OpEstablish
)

// Ops lists every operation in declaration order.
var Ops = []Op{OpConnect, OpDisconnect, OpSend, OpEstablish} //nolint:gochecknoglobals

func (o Op) String() string {
	switch o {
	case OpConnect:
		return "connect"
	case OpDisconnect:
		return "disconnect"
	case OpSend:
		return "send"
	case OpEstablish:
		return "establish"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// ParseOp maps a name produced by [Op.String] back to its Op.
func ParseOp(name string) (Op, error) {
	for _, o := range Ops {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// ── Outcome ──────────────────────────────────────────────────────────

// Outcome says whether an operation took effect.
type Outcome int

const (
	// Accepted: the operation took effect (possibly without a mode change).
	Accepted Outcome = iota
	// Rejected: the operation is not allowed in the current mode and
	// the mode is left unchanged.
	Rejected
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// MarshalText renders the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// MarshalText renders the operation by name.
func (o Op) MarshalText() ([]byte, error) { return []byte(o.String()), nil }
