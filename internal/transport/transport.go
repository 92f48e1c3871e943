// Package transport provides the dialers the handshake driver uses to
// bring a Connection from Connecting to Connected.  Transports handle
// how a link is established (TCP, UDP, or through an SSH gateway),
// independent of the state machine that decides whether it may be.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH client).  Stateless dialers return nil.
	Close() error
}
