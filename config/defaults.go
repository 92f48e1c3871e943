package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variables.

const (
	// DefaultName labels the connection when --name is not given.
	DefaultName = "connection"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the per-dial timeout.
	DefaultConnTimeout = 10 * time.Second

	// DefaultRetries is the number of dial attempts per handshake.
	DefaultRetries = 3

	// EnvPrefix prefixes every environment variable (CONNSTATE_HOST, …).
	EnvPrefix = "CONNSTATE"
)

// DefaultScript replays the classic walkthrough: a cancelled attempt,
// then a completed handshake, a send, and a teardown.
var DefaultScript = []string{ //nolint:gochecknoglobals
	"connect",
	"send:Hola",
	"disconnect",
	"send:Hola",
	"connect",
	"establish",
	"send:Hola",
	"disconnect",
}
