package rcon

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// DefaultReconnectAttempts is the number of connect+authenticate tries
// in one reconnect cycle.
const DefaultReconnectAttempts = 3

// ReconnectError reports an exhausted reconnect cycle. Terminal for the
// cycle only: the caller may start another cycle later or give up.
type ReconnectError struct {
	Attempts int
	Err      error // last failure seen
}

func (e *ReconnectError) Error() string {
	return fmt.Sprintf("rcon: failed to reconnect after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ReconnectError) Unwrap() error { return e.Err }

// ConsoleConfig configures a Console.
type ConsoleConfig struct {
	// MaxReconnectAttempts per reconnect cycle. Defaults to
	// DefaultReconnectAttempts.
	MaxReconnectAttempts int

	// BackoffBase is the wait before the first reconnect attempt;
	// attempt k (0-indexed) waits BackoffBase << k. Defaults to 1s.
	BackoffBase time.Duration

	// Breaker optionally wraps command execution with a circuit
	// breaker. Nil disables it.
	Breaker *gobreaker.CircuitBreaker[string]

	// OnConnectionLost is invoked before a reconnect cycle starts,
	// with the error that triggered it.
	OnConnectionLost func(err error)

	// OnReconnect is invoked after a successful reconnect, before the
	// failed command is retried. The CLI uses it to restart the
	// background refresher on a fresh connection.
	OnReconnect func()

	Logger zerolog.Logger

	// sleep is replaced in tests to observe backoff delays.
	sleep func(time.Duration)
}

// Console wraps a foreground session with reconnect-with-backoff and a
// single retry of the command that observed the connection loss. It is
// driven from one goroutine, the interactive loop.
type Console struct {
	client   *Client
	password string
	cfg      ConsoleConfig

	reconnects atomic.Uint64
}

// NewConsole wraps client, which should already be connected and
// authenticated. The password is kept for reconnection.
func NewConsole(client *Client, password string, cfg ConsoleConfig) *Console {
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = DefaultReconnectAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.sleep == nil {
		cfg.sleep = time.Sleep
	}
	return &Console{client: client, password: password, cfg: cfg}
}

// Client returns the wrapped foreground session.
func (c *Console) Client() *Client { return c.client }

// Reconnects returns how many reconnect cycles have succeeded.
func (c *Console) Reconnects() uint64 { return c.reconnects.Load() }

// Run executes one command. On connection loss it notifies, runs a
// reconnect cycle, and retries the command exactly once; a second
// failure is returned as-is rather than looping on a command that is
// itself the problem.
func (c *Console) Run(cmd string) (string, error) {
	out, err := c.exec(cmd)
	if err == nil || !IsConnectionLost(err) {
		return out, err
	}

	if c.cfg.OnConnectionLost != nil {
		c.cfg.OnConnectionLost(err)
	}
	if rerr := c.Reconnect(); rerr != nil {
		return "", rerr
	}
	return c.exec(cmd)
}

// Reconnect runs one reconnect cycle: close, then up to
// MaxReconnectAttempts waits of BackoffBase<<k followed by
// connect+authenticate. Also used directly for an explicit user-issued
// reconnect command.
func (c *Console) Reconnect() error {
	c.client.Close()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxReconnectAttempts; attempt++ {
		delay := c.cfg.BackoffBase << attempt
		c.cfg.Logger.Info().
			Int("attempt", attempt+1).
			Int("max", c.cfg.MaxReconnectAttempts).
			Dur("delay", delay).
			Msg("reconnecting")
		c.cfg.sleep(delay)

		if err := c.connectAndAuth(); err != nil {
			lastErr = err
			continue
		}

		c.reconnects.Add(1)
		c.cfg.Logger.Info().Msg("reconnected")
		if c.cfg.OnReconnect != nil {
			c.cfg.OnReconnect()
		}
		return nil
	}

	return &ReconnectError{Attempts: c.cfg.MaxReconnectAttempts, Err: lastErr}
}

func (c *Console) connectAndAuth() error {
	if err := c.client.Connect(); err != nil {
		return err
	}
	if err := c.client.Authenticate(c.password); err != nil {
		c.client.Close()
		return err
	}
	return nil
}

func (c *Console) exec(cmd string) (string, error) {
	if c.cfg.Breaker != nil {
		return c.cfg.Breaker.Execute(func() (string, error) {
			return c.client.Command(cmd)
		})
	}
	return c.client.Command(cmd)
}

// NewCircuitBreaker returns a breaker suitable for ConsoleConfig.Breaker:
// it opens after three consecutive observations with a failure ratio of
// at least 60%, and probes again after the given timeout.
func NewCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}
