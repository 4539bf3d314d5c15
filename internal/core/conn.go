package core

import "github.com/dkeye/Parley/internal/domain"

// Frame is a raw text payload on the wire.
type Frame []byte

// Close status codes passed down to the transport. The first two mirror the
// websocket close codes, CloseReplaced is an application code.
const (
	CloseNormal          = 1000
	ClosePolicyViolation = 1008
	CloseReplaced        = 4000
)

// Conn abstracts a member's transport endpoint.
// Owned by the adapter; the adapter must Close() it on read-loop exit.
type Conn interface {
	// ID is unique per transport connection, not per user. The registry
	// uses it to tell a live member from one it already superseded.
	ID() string
	TrySend(Frame) error
	Close(code int, reason string)
}

// Member binds one authenticated username to one live connection within
// one room. Owned by the registry entry for its room.
type Member struct {
	Username string
	Room     domain.RoomName
	Conn     Conn
}
