package rcon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
	"github.com/rs/zerolog"
)

// PoolConfig configures a PooledClient.
type PoolConfig struct {
	// MaxSize is the maximum number of sessions in the pool.
	// Defaults to 4.
	MaxSize int32

	// Timeout is the per-session socket timeout. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	// Sequence shared by all pooled sessions. A fresh one is created
	// when nil; supply one to also share ids with sessions outside
	// the pool.
	Sequence *Sequence

	Logger zerolog.Logger
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	TotalSessions    int32
	IdleSessions     int32
	AcquiredSessions int32
	AcquireCount     uint64
	CreatedSessions  uint64
	ClosedSessions   uint64
}

// PooledClient runs one-shot commands over a puddle-backed pool of
// authenticated sessions, for automation that issues commands from many
// goroutines. Every pooled session owns its own connection; a single
// connection is never multiplexed.
type PooledClient struct {
	pool *puddle.Pool[*Client]

	created atomic.Uint64
	closed  atomic.Uint64
}

// NewPooledClient builds a pool of sessions for the given server. New
// sessions are dialed and authenticated lazily on first acquire.
func NewPooledClient(host string, port int, password string, cfg PoolConfig) (*PooledClient, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	seq := cfg.Sequence
	if seq == nil {
		seq = NewSequence()
	}

	p := &PooledClient{}

	pool, err := puddle.NewPool(&puddle.Config[*Client]{
		Constructor: func(ctx context.Context) (*Client, error) {
			client := NewClient(host, port,
				WithTimeout(cfg.Timeout),
				WithSequence(seq),
				WithLogger(cfg.Logger),
			)
			if err := client.Connect(); err != nil {
				return nil, err
			}
			if err := client.Authenticate(password); err != nil {
				client.Close()
				return nil, err
			}
			p.created.Add(1)
			return client, nil
		},
		Destructor: func(client *Client) {
			p.closed.Add(1)
			_ = client.Close()
		},
		MaxSize: cfg.MaxSize,
	})
	if err != nil {
		return nil, err
	}

	p.pool = pool
	return p, nil
}

// Exec acquires a session, runs the command and releases the session.
// Sessions whose connection broke are destroyed instead of released so
// the next acquire dials a fresh one.
func (p *PooledClient) Exec(ctx context.Context, cmd string) (string, error) {
	resource, err := p.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}

	out, err := resource.Value().Command(cmd)
	if err != nil {
		if IsConnectionLost(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return "", err
	}

	resource.Release()
	return out, nil
}

// Close destroys all pooled sessions and rejects further acquires.
func (p *PooledClient) Close() {
	p.pool.Close()
}

// Stats returns a snapshot of pool counters.
func (p *PooledClient) Stats() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		TotalSessions:    s.TotalResources(),
		IdleSessions:     s.IdleResources(),
		AcquiredSessions: s.AcquiredResources(),
		AcquireCount:     uint64(s.AcquireCount()),
		CreatedSessions:  p.created.Load(),
		ClosedSessions:   p.closed.Load(),
	}
}
