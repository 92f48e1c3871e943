package state

import "github.com/google/uuid"

// Connection is a named entity whose behaviour depends on its current
// Mode.  It starts Disconnected and changes mode only in response to
// its own method calls.
//
// A Connection is not safe for concurrent use; callers that share one
// must serialise access (see session.Session).
type Connection struct {
	ID   uuid.UUID
	Name string

	mode     Mode
	observer func(Result)
}

// New returns a Connection in the Disconnected mode.
func New(name string) *Connection {
	return &Connection{ID: uuid.New(), Name: name, mode: Disconnected}
}

// Mode returns the currently active mode.
func (c *Connection) Mode() Mode { return c.mode }

// OnTransition installs fn to be called after every dispatch,
// accepted or rejected.  Pass nil to remove it.
func (c *Connection) OnTransition(fn func(Result)) { c.observer = fn }

// Connect requests a transition toward an active link.
func (c *Connection) Connect() Result { return c.apply(OpConnect, "") }

// Disconnect requests a transition toward no link.
func (c *Connection) Disconnect() Result { return c.apply(OpDisconnect, "") }

// SendData requests transmission of payload.  It is accepted only in
// the Connected mode.
func (c *Connection) SendData(payload string) Result { return c.apply(OpSend, payload) }

// Establish marks an in-progress handshake as complete.  It is the
// external trigger for Connecting → Connected and is rejected in any
// other mode.
func (c *Connection) Establish() Result { return c.apply(OpEstablish, "") }

// Do dispatches an arbitrary op; payload is ignored unless op is OpSend.
func (c *Connection) Do(op Op, payload string) Result { return c.apply(op, payload) }

func (c *Connection) apply(op Op, payload string) Result {
	res := Dispatch(c.mode, op, payload)
	c.mode = res.To
	if c.observer != nil {
		c.observer(res)
	}
	return res
}
