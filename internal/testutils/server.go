// Package testutils provides an in-process RCON server speaking the
// real wire format over TCP, so client behavior can be tested without a
// game server.
package testutils

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/pior/rcon/protocol"
)

// Config controls how the mock server behaves.
type Config struct {
	// Password accepted for LOGIN packets. Empty accepts anything.
	Password string

	// Respond returns the response fragments for a command payload.
	// Each fragment becomes one RESPONSE packet tagged with the
	// command's request id. Nil responds with a single empty fragment.
	Respond func(cmd string) []string

	// WithholdSentinel suppresses the response to sentinel packets,
	// forcing the client to rely on its read timeout.
	WithholdSentinel bool

	// CloseOnCommand closes the connection as soon as a COMMAND
	// packet arrives, simulating a server crash mid-exchange.
	CloseOnCommand bool

	// NoiseID, when non-zero, injects one RESPONSE packet with this
	// unrelated request id before each real response fragment.
	NoiseID int32
}

// Server is a mock RCON server bound to a loopback port.
type Server struct {
	cfg      Config
	listener net.Listener

	mu    sync.Mutex
	conns []net.Conn
	wg    sync.WaitGroup
}

// NewServer starts a mock server on an ephemeral loopback port and
// registers its shutdown with t.Cleanup.
func NewServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := &Server{cfg: cfg, listener: listener}
	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.Stop)
	return s
}

// HostPort returns the server's host and port.
func (s *Server) HostPort(t *testing.T) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		t.Fatalf("failed to split address: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("bad port %q: %v", portStr, err)
	}
	return host, port
}

// Stop closes the listener and every live connection, then waits for
// all server goroutines to finish. Safe to call more than once.
func (s *Server) Stop() {
	_ = s.listener.Close()

	s.mu.Lock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
	s.mu.Unlock()

	s.wg.Wait()
}

// CloseConnections drops every live client connection while keeping the
// listener open, so reconnects succeed.
func (s *Server) CloseConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		pkt, err := readPacket(conn)
		if err != nil {
			return
		}

		switch pkt.Type {
		case protocol.TypeLogin:
			id := pkt.RequestID
			if s.cfg.Password != "" && pkt.Payload != s.cfg.Password {
				id = protocol.AuthFailureID
			}
			if err := writePacket(conn, protocol.Packet{RequestID: id, Type: protocol.TypeResponse}); err != nil {
				return
			}

		case protocol.TypeCommand:
			if s.cfg.CloseOnCommand {
				return
			}
			if pkt.RequestID == protocol.SentinelID {
				if s.cfg.WithholdSentinel {
					continue
				}
				if err := writePacket(conn, protocol.Packet{RequestID: protocol.SentinelID, Type: protocol.TypeResponse}); err != nil {
					return
				}
				continue
			}

			fragments := []string{""}
			if s.cfg.Respond != nil {
				fragments = s.cfg.Respond(pkt.Payload)
			}
			for _, fragment := range fragments {
				if s.cfg.NoiseID != 0 {
					noise := protocol.Packet{RequestID: s.cfg.NoiseID, Type: protocol.TypeResponse, Payload: "noise"}
					if err := writePacket(conn, noise); err != nil {
						return
					}
				}
				resp := protocol.Packet{RequestID: pkt.RequestID, Type: protocol.TypeResponse, Payload: fragment}
				if err := writePacket(conn, resp); err != nil {
					return
				}
			}
		}
	}
}

func readPacket(conn net.Conn) (protocol.Packet, error) {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(conn, prefix); err != nil {
		return protocol.Packet{}, err
	}

	length := int32(binary.LittleEndian.Uint32(prefix))
	if length < protocol.HeaderSize || length > 1<<20 {
		return protocol.Packet{}, errors.New("testutils: bad length prefix")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return protocol.Packet{}, err
	}
	return protocol.Decode(body)
}

func writePacket(conn net.Conn, pkt protocol.Packet) error {
	_, err := conn.Write(protocol.Encode(pkt))
	return err
}
