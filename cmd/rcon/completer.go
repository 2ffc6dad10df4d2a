package main

import (
	"sort"
	"strings"

	"github.com/pior/rcon"
	"github.com/pior/rcon/helptext"
)

// Commands handled by the REPL itself, never sent to the server.
var localCommands = []string{"exit", "quit", "reconnect"}

// completer implements readline's AutoCompleter against the live
// Directory snapshot: command names for the first word, choice options
// and player names for argument positions.
type completer struct {
	dir *rcon.Directory
}

// Do returns candidate suffixes for the word being typed and the length
// of that word.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	words := strings.Fields(text)
	newWord := text == "" || strings.HasSuffix(text, " ")

	snap := c.dir.Snapshot()

	// First word: a command name.
	if len(words) == 0 || (len(words) == 1 && !newWord) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		return suffixes(commandCandidates(snap, prefix), prefix)
	}

	args, ok := snap.Commands[words[0]]
	if !ok {
		return nil, 0
	}

	var argIndex int
	var prefix string
	if newWord {
		argIndex = len(words) - 1
	} else {
		argIndex = len(words) - 2
		prefix = words[len(words)-1]
	}
	if argIndex < 0 || argIndex >= len(args) {
		return nil, 0
	}

	return suffixes(argCandidates(snap, args[argIndex], prefix), prefix)
}

func commandCandidates(snap *rcon.Snapshot, prefix string) []string {
	var names []string
	lower := strings.ToLower(prefix)

	for name := range snap.Commands {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			names = append(names, name)
		}
	}
	for _, name := range localCommands {
		if strings.HasPrefix(name, lower) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// argCandidates completes choice options, and player names for
// arguments that look like player slots.
func argCandidates(snap *rcon.Snapshot, arg helptext.Arg, prefix string) []string {
	lower := strings.ToLower(prefix)
	var candidates []string

	switch a := arg.(type) {
	case helptext.RequiredChoice:
		candidates = a.Options
	case helptext.OptionalChoice:
		candidates = a.Options
	case helptext.Required:
		if isPlayerArg(a.Name) {
			candidates = snap.Players
		}
	case helptext.Optional:
		if isPlayerArg(a.Name) {
			candidates = snap.Players
		}
	}

	var matches []string
	for _, option := range candidates {
		if strings.HasPrefix(strings.ToLower(option), lower) {
			matches = append(matches, option)
		}
	}
	sort.Strings(matches)
	return matches
}

func isPlayerArg(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "player") || lower == "target" || lower == "name"
}

// suffixes converts full candidates into the rune-suffix form readline
// expects: the remainder after the typed prefix, plus a trailing space.
func suffixes(candidates []string, prefix string) ([][]rune, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	out := make([][]rune, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, []rune(c[len(prefix):]+" "))
	}
	return out, len(prefix)
}
