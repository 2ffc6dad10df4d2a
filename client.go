// Package rcon is a client for the Source-engine remote console protocol
// used to administer game servers: authenticate once over TCP, then
// exchange text commands for text responses, reassembling responses that
// span multiple packets even though the protocol has no end-of-response
// marker.
package rcon

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pior/rcon/protocol"
)

// DefaultTimeout is the socket timeout applied when WithTimeout is not given.
const DefaultTimeout = 10 * time.Second

// maxPacketLength bounds the length prefix we accept from the server.
// Anything larger means the stream is corrupted.
const maxPacketLength = 1 << 20

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the socket timeout used for dialing, writes and each read.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSequence makes the client allocate request ids from a shared
// Sequence. Sessions running concurrently in one process must share one
// so ids never collide across connections.
func WithSequence(seq *Sequence) Option {
	return func(c *Client) { c.seq = seq }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client is a single RCON session over one TCP connection. It is not
// safe for concurrent use; run concurrent sessions on separate Clients
// sharing a Sequence.
type Client struct {
	host    string
	port    int
	timeout time.Duration
	seq     *Sequence
	log     zerolog.Logger

	conn  *conn
	stats statsCollector
}

// NewClient returns a disconnected client for the given server.
func NewClient(host string, port int, opts ...Option) *Client {
	c := &Client{
		host:    host,
		port:    port,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.seq == nil {
		c.seq = NewSequence()
	}
	return c
}

// Connect establishes the TCP connection.
func (c *Client) Connect() error {
	if c.conn != nil {
		c.Close()
	}

	conn, err := dial(c.host, c.port, c.timeout)
	if err != nil {
		c.stats.recordError()
		return err
	}
	c.conn = conn
	c.log.Debug().Str("host", c.host).Int("port", c.port).Msg("connected")
	return nil
}

// Close releases the connection. Idempotent; always leaves the client
// disconnected even if the underlying close fails.
func (c *Client) Close() error {
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	return nil
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.netConn != nil
}

// Host returns the configured server host.
func (c *Client) Host() string { return c.host }

// Port returns the configured server port.
func (c *Client) Port() int { return c.port }

// Timeout returns the configured socket timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Stats returns a snapshot of session counters.
func (c *Client) Stats() Stats { return c.stats.snapshot() }

// Authenticate sends the password and reads exactly one response packet.
// A response id of -1 means the server rejected the password; the
// session stays connected so the caller can retry with another password
// or close. Any other id is success: servers echo either -1 or the
// original id, so the echoed id is deliberately not checked.
func (c *Client) Authenticate(password string) error {
	c.stats.recordAuth()

	id := c.seq.Next()
	if err := c.send(protocol.Packet{RequestID: id, Type: protocol.TypeLogin, Payload: password}); err != nil {
		return err
	}

	// Auth responses are never fragmented; a single read is enough.
	resp, err := c.recv()
	if err != nil {
		return err
	}

	if resp.RequestID == protocol.AuthFailureID {
		return ErrAuthFailed
	}
	c.log.Debug().Msg("authenticated")
	return nil
}

// Command sends a command and returns the complete response text.
//
// The protocol gives no terminator for multi-packet responses, so the
// command is followed by a synthetic packet with the reserved sentinel
// id. The server processes packets in order, which guarantees the
// sentinel's response arrives only after every fragment of the real
// response. Fragments are concatenated as-is; an empty result is valid.
//
// A read timeout while waiting for the sentinel is absorbed: whatever
// fragments arrived are returned rather than blocking forever. Any
// other transport failure propagates and disconnects the session.
func (c *Client) Command(text string) (string, error) {
	c.stats.recordCommand()

	id := c.seq.Next()
	if err := c.send(protocol.Packet{RequestID: id, Type: protocol.TypeCommand, Payload: text}); err != nil {
		return "", err
	}
	if err := c.send(protocol.Packet{RequestID: protocol.SentinelID, Type: protocol.TypeCommand, Payload: ""}); err != nil {
		return "", err
	}

	var fragments []string
	for {
		resp, err := c.recv()
		if err != nil {
			if IsTimeout(err) {
				c.stats.recordPartial()
				c.log.Debug().Int32("id", id).Msg("sentinel timed out, returning partial response")
				break
			}
			return "", err
		}

		if resp.RequestID == protocol.SentinelID {
			break
		}
		if resp.RequestID == id {
			fragments = append(fragments, resp.Payload)
		}
		// Any other id belongs to no in-flight request; ignore it
		// rather than corrupt the reassembly.
	}

	return strings.Join(fragments, ""), nil
}

func (c *Client) send(pkt protocol.Packet) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	raw := protocol.Encode(pkt)
	if err := c.conn.writeAll(raw); err != nil {
		c.stats.recordError()
		c.teardown(err)
		return err
	}
	c.stats.recordWritten(len(raw))
	return nil
}

func (c *Client) recv() (protocol.Packet, error) {
	if c.conn == nil {
		return protocol.Packet{}, ErrNotConnected
	}

	prefix, err := c.conn.readExact(4)
	if err != nil {
		return protocol.Packet{}, c.recvErr(err)
	}

	length := int32(binary.LittleEndian.Uint32(prefix))
	if length < protocol.HeaderSize || length > maxPacketLength {
		err := &ConnectionLostError{Op: "read", Err: protocol.ErrTruncatedPacket}
		c.stats.recordError()
		c.teardown(err)
		return protocol.Packet{}, err
	}

	body, err := c.conn.readExact(int(length))
	if err != nil {
		return protocol.Packet{}, c.recvErr(err)
	}
	c.stats.recordRead(4 + len(body))

	pkt, err := protocol.Decode(body)
	if err != nil {
		lost := &ConnectionLostError{Op: "read", Err: err}
		c.stats.recordError()
		c.teardown(lost)
		return protocol.Packet{}, lost
	}
	return pkt, nil
}

// recvErr classifies a read failure: timeouts leave the session intact,
// everything else disconnects it.
func (c *Client) recvErr(err error) error {
	if IsTimeout(err) {
		return err
	}
	c.stats.recordError()
	c.teardown(err)
	return err
}

func (c *Client) teardown(err error) {
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.log.Debug().Err(err).Msg("session disconnected")
}
