package rcon

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConnected is returned by any operation attempted before
	// Connect, or after the connection has been torn down.
	ErrNotConnected = errors.New("rcon: not connected")

	// ErrAuthFailed is returned when the server rejects the password.
	// The session is left connected; the caller decides whether to close.
	ErrAuthFailed = errors.New("rcon: authentication failed: incorrect password")
)

// ConnectError reports a failure to establish a connection: refused,
// unreachable, DNS failure. Never retried by the transport itself.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("rcon: failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ConnectionLostError reports an established connection breaking during
// send or receive. The session holding it is forced to disconnected.
type ConnectionLostError struct {
	Op  string // operation that failed: dial, write, read
	Err error  // underlying cause, nil for a clean peer close
}

func (e *ConnectionLostError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rcon: connection closed by server during %s", e.Op)
	}
	return fmt.Sprintf("rcon: connection lost during %s: %v", e.Op, e.Err)
}

func (e *ConnectionLostError) Unwrap() error { return e.Err }

// IsConnectionLost reports whether err indicates a broken established
// connection. This is the condition the Console reconnect cycle acts on.
func IsConnectionLost(err error) bool {
	var lost *ConnectionLostError
	return errors.As(err, &lost) || errors.Is(err, ErrNotConnected)
}

// IsTimeout reports whether err is a read deadline expiry. Timeouts are
// fatal everywhere except inside Command's reassembly loop, so they must
// stay distinguishable from connection loss.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
