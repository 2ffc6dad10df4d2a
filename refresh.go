package rcon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pior/rcon/helptext"
)

// DefaultRefreshInterval is how often the Refresher re-fetches the
// player list once the initial crawl is done.
const DefaultRefreshInterval = 60 * time.Second

// Sink receives command metadata and player lists from the background
// session. Implementations must tolerate being updated from a different
// goroutine than the one reading them.
type Sink interface {
	SetCommands(commands map[string][]helptext.Arg)
	SetPlayers(players []string)
}

// Snapshot is an immutable view of the completion data. Never mutated
// after publication.
type Snapshot struct {
	Commands map[string][]helptext.Arg
	Players  []string
}

// Directory is a Sink holding an atomically swapped Snapshot. Readers
// take the whole snapshot with no locks; writers replace it wholesale.
type Directory struct {
	ptr atomic.Pointer[Snapshot]
}

// NewDirectory returns a Directory holding an empty snapshot.
func NewDirectory() *Directory {
	d := &Directory{}
	d.ptr.Store(&Snapshot{})
	return d
}

// Snapshot returns the current view. The result must not be modified.
func (d *Directory) Snapshot() *Snapshot {
	return d.ptr.Load()
}

// SetCommands publishes a new snapshot with the given commands.
func (d *Directory) SetCommands(commands map[string][]helptext.Arg) {
	for {
		old := d.ptr.Load()
		next := &Snapshot{Commands: commands, Players: old.Players}
		if d.ptr.CompareAndSwap(old, next) {
			return
		}
	}
}

// SetPlayers publishes a new snapshot with the given players.
func (d *Directory) SetPlayers(players []string) {
	for {
		old := d.ptr.Load()
		next := &Snapshot{Commands: old.Commands, Players: players}
		if d.ptr.CompareAndSwap(old, next) {
			return
		}
	}
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	// Interval between player list refreshes. Defaults to
	// DefaultRefreshInterval.
	Interval time.Duration

	// Sink receives fetched data. Required.
	Sink Sink

	Logger zerolog.Logger
}

// Refresher periodically pulls completion data from the server on its
// own session, entirely independent of the interactive one. Staleness
// is harmless: every failure is logged at debug level and ends the
// loop without surfacing anywhere.
type Refresher struct {
	client   *Client
	password string
	cfg      RefresherConfig
}

// NewRefresher wraps a disconnected client. The Refresher owns the
// client from here on: Run connects, authenticates and closes it. The
// client must never be shared with the foreground session.
func NewRefresher(client *Client, password string, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	return &Refresher{client: client, password: password, cfg: cfg}
}

// Run connects, authenticates, performs the initial fetch, then
// re-fetches the player list every interval until ctx is done or the
// connection fails. Run blocks; start it on its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	log := r.cfg.Logger
	defer r.client.Close()

	if err := r.client.Connect(); err != nil {
		log.Debug().Err(err).Msg("background refresh: connect failed")
		return
	}
	if err := r.client.Authenticate(r.password); err != nil {
		log.Debug().Err(err).Msg("background refresh: authentication failed")
		return
	}

	// Player list first: one quick command, immediately useful.
	if players, err := helptext.Players(r.client); err != nil {
		if IsConnectionLost(err) {
			log.Debug().Err(err).Msg("background refresh stopped")
			return
		}
		log.Debug().Err(err).Msg("background refresh: player list fetch failed")
	} else {
		r.cfg.Sink.SetPlayers(players)
	}

	// The full help crawl is slow; one pass per run.
	if commands, err := helptext.Crawl(r.client, log); err != nil {
		if IsConnectionLost(err) {
			log.Debug().Err(err).Msg("background refresh stopped")
			return
		}
		log.Debug().Err(err).Msg("background refresh: help crawl failed")
	} else {
		r.cfg.Sink.SetCommands(commands)
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			players, err := helptext.Players(r.client)
			if err != nil {
				log.Debug().Err(err).Msg("background refresh stopped")
				return
			}
			r.cfg.Sink.SetPlayers(players)
		}
	}
}
