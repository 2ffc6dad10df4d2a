// Command rcon is an interactive client for Minecraft RCON servers:
// TOML server config, 1Password credential lookup, tab completion fed
// by a background session, and automatic reconnection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pior/rcon"
	"github.com/pior/rcon/helptext"
	"github.com/pior/rcon/minefmt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rcon: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		password = flag.String("p", "", "RCON password (overrides 1Password lookup)")
		oneShot  = flag.String("c", "", "execute a single command and exit")
		timeout  = flag.Duration("timeout", rcon.DefaultTimeout, "socket timeout")
		noColor  = flag.Bool("no-color", false, "strip style codes instead of converting to ANSI colors")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	log := newLogger(*verbose)

	dir, err := configDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(filepath.Join(dir, "config.toml"))
	if err != nil {
		return err
	}

	server, err := resolveServer(flag.Arg(0), cfg)
	if err != nil {
		return err
	}

	pass, err := resolvePassword(*password, server, cfg)
	if err != nil {
		return err
	}

	seq := rcon.NewSequence()
	client := rcon.NewClient(server.Host, server.Port,
		rcon.WithTimeout(*timeout),
		rcon.WithSequence(seq),
		rcon.WithLogger(log),
	)
	defer client.Close()

	if err := client.Connect(); err != nil {
		return err
	}
	if err := client.Authenticate(pass); err != nil {
		return err
	}

	if *oneShot != "" {
		out, err := client.Command(*oneShot)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Println(minefmt.Format(out, !*noColor))
		}
		return nil
	}

	return runInteractive(client, server, pass, seq, dir, !*noColor, *timeout, log)
}

func runInteractive(
	client *rcon.Client,
	server ServerConfig,
	pass string,
	seq *rcon.Sequence,
	dir string,
	color bool,
	timeout time.Duration,
	log zerolog.Logger,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	directory := rcon.NewDirectory()

	// A warm cache gives completions before the first crawl finishes.
	cacheFile := cachePath(dir, server.Host, server.Port)
	if commands, ok := loadCache(cacheFile); ok {
		directory.SetCommands(commands)
		log.Debug().Int("commands", len(commands)).Msg("loaded help cache")
	}

	sink := &cachingSink{directory: directory, path: cacheFile, log: log}

	refresh := &refreshSupervisor{
		ctx:     ctx,
		host:    server.Host,
		port:    server.Port,
		pass:    pass,
		seq:     seq,
		timeout: timeout,
		sink:    sink,
		log:     log,
	}
	refresh.start()
	defer refresh.stop()

	console := rcon.NewConsole(client, pass, rcon.ConsoleConfig{
		OnConnectionLost: func(err error) {
			fmt.Fprintln(os.Stderr, "Connection lost. Attempting to reconnect...")
		},
		OnReconnect: refresh.start,
		Logger:      log,
	})

	fmt.Printf("Connected to %s (%s:%d)\n", server.Name, server.Host, server.Port)
	fmt.Println("Type 'help' for server commands, Ctrl+D or 'exit' to quit.")
	fmt.Println()

	return runREPL(console, directory, replOptions{
		historyFile: filepath.Join(dir, "history"),
		color:       color,
	})
}

// resolvePassword picks the password from the flag, the server's
// credential reference, or a terminal prompt.
func resolvePassword(flagValue string, server ServerConfig, cfg AppConfig) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if ref := server.resolveCredentials(cfg.DefaultCredentials); ref != nil {
		return lookupPassword(*ref)
	}

	return promptPassword(server.Name)
}

// cachingSink updates the completion directory and persists crawled
// commands to the on-disk cache.
type cachingSink struct {
	directory *rcon.Directory
	path      string
	log       zerolog.Logger
}

func (s *cachingSink) SetCommands(commands map[string][]helptext.Arg) {
	s.directory.SetCommands(commands)
	if err := saveCache(s.path, commands); err != nil {
		s.log.Debug().Err(err).Msg("failed to save help cache")
	}
}

func (s *cachingSink) SetPlayers(players []string) {
	s.directory.SetPlayers(players)
}

// refreshSupervisor starts a background refresher on its own session
// and restarts it after reconnects, cancelling the previous one first.
type refreshSupervisor struct {
	ctx     context.Context
	host    string
	port    int
	pass    string
	seq     *rcon.Sequence
	timeout time.Duration
	sink    rcon.Sink
	log     zerolog.Logger

	cancel context.CancelFunc
}

func (r *refreshSupervisor) start() {
	r.stop()

	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel

	client := rcon.NewClient(r.host, r.port,
		rcon.WithTimeout(r.timeout),
		rcon.WithSequence(r.seq),
		rcon.WithLogger(r.log),
	)
	refresher := rcon.NewRefresher(client, r.pass, rcon.RefresherConfig{
		Sink:   r.sink,
		Logger: r.log,
	})
	go refresher.Run(ctx)
}

func (r *refreshSupervisor) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
