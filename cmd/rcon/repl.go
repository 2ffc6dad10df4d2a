package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"

	"github.com/pior/rcon"
	"github.com/pior/rcon/minefmt"
)

type replOptions struct {
	historyFile string
	color       bool
}

// runREPL drives the interactive loop until the user exits. The console
// handles reconnection, including the explicit 'reconnect' command.
func runREPL(console *rcon.Console, dir *rcon.Directory, opts replOptions) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:       "rcon> ",
		HistoryFile:  opts.historyFile,
		HistoryLimit: 500,
		AutoComplete: &completer{dir: dir},
	})
	if err != nil {
		return fmt.Errorf("initialize line editor: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				// Ctrl-C abandons a non-empty line, exits on an
				// empty one.
				if line != "" {
					continue
				}
				fmt.Println("\nGoodbye.")
				return nil
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye.")
				return nil
			}
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		switch text {
		case "exit", "quit":
			fmt.Println("Goodbye.")
			return nil
		case "reconnect":
			if err := console.Reconnect(); err != nil {
				fmt.Fprintf(os.Stderr, "%v\nUse 'reconnect' to try again, or 'exit' to quit.\n", err)
				continue
			}
			continue
		}

		executeCommand(console, text, opts.color)
	}
}

// executeCommand runs one server command through the console and prints
// the response. The console already reconnects and retries once; an
// error here is final for this command.
func executeCommand(console *rcon.Console, text string, color bool) {
	out, err := console.Run(text)
	if err != nil {
		var reconnectErr *rcon.ReconnectError
		if errors.As(err, &reconnectErr) {
			fmt.Fprintf(os.Stderr, "%v\nUse 'reconnect' to try again, or 'exit' to quit.\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	if out != "" {
		fmt.Println(minefmt.Format(out, color))
	}
}
