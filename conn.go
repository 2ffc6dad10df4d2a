package rcon

import (
	"io"
	"net"
	"strconv"
	"time"
)

// conn owns a raw TCP stream and enforces exact-length reads under a
// deadline. It translates I/O failures into the package error taxonomy
// but knows nothing about packets; framing lives in Client.
type conn struct {
	netConn net.Conn
	timeout time.Duration
}

// dial opens a TCP connection. Any OS-level failure is reported as a
// single ConnectError carrying the cause.
func dial(host string, port int, timeout time.Duration) (*conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	netConn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}

	return &conn{netConn: netConn, timeout: timeout}, nil
}

// close releases the connection. Safe to call repeatedly; errors from
// the underlying close are swallowed.
func (c *conn) close() {
	if c.netConn != nil {
		_ = c.netConn.Close()
		c.netConn = nil
	}
}

// writeAll writes the full buffer. A write failure tears the connection
// down so subsequent operations fail fast with ErrNotConnected.
func (c *conn) writeAll(b []byte) error {
	if c.netConn == nil {
		return ErrNotConnected
	}

	if err := c.netConn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		c.close()
		return &ConnectionLostError{Op: "write", Err: err}
	}

	if _, err := c.netConn.Write(b); err != nil {
		c.close()
		return &ConnectionLostError{Op: "write", Err: err}
	}
	return nil
}

// readExact reads until exactly n bytes are accumulated. A peer close is
// a ConnectionLostError, distinct from a deadline expiry which
// propagates as-is so the caller can absorb it during reassembly.
func (c *conn) readExact(n int) ([]byte, error) {
	if c.netConn == nil {
		return nil, ErrNotConnected
	}

	if err := c.netConn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		c.close()
		return nil, &ConnectionLostError{Op: "read", Err: err}
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.netConn, buf); err != nil {
		if IsTimeout(err) {
			// Not fatal: the session layer decides whether to keep
			// waiting for fragments or give up.
			return nil, err
		}
		c.close()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &ConnectionLostError{Op: "read"}
		}
		return nil, &ConnectionLostError{Op: "read", Err: err}
	}
	return buf, nil
}
