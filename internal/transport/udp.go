package transport

import (
	"context"
	"net"
	"time"
)

// UDPDialer "connects" a UDP socket to a fixed peer.  There is no real
// handshake: the dial succeeds once the address resolves.
type UDPDialer struct {
	Timeout time.Duration
}

// Dial binds a UDP socket to address.
func (d *UDPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "" || network == "tcp" {
		network = "udp"
	}
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless UDP dialers.
func (d *UDPDialer) Close() error { return nil }
