package helptext

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reHelpHeader    = regexp.MustCompile(`^-+\s*Help:`)
	rePageCount     = regexp.MustCompile(`\((\d+)/(\d+)\)`)
	reIndexEntry    = regexp.MustCompile(`^/([^:\s]+(?::[^:\s]+)*):\s+.+`)
	reCategoryEntry = regexp.MustCompile(`^\w[\w-]*:\s*(All commands for |Lists )`)
	reMetaLine      = regexp.MustCompile(`^Use /help `)
	reUsageCommand  = regexp.MustCompile(`^/?[\w:.-]+\s*(.*)`)
)

// ParsePageCount extracts the total page count from a help index header
// line like '--------- Help: Index (1/58) ----'. Returns 1 when no page
// count is present.
func ParsePageCount(text string) int {
	m := rePageCount.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseIndex extracts command names from a help index page. Entries look
// like '/command: description' or '/namespace:command: description';
// header, category and meta lines are skipped.
func ParseIndex(text string) []string {
	var commands []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if reHelpHeader.MatchString(line) || reCategoryEntry.MatchString(line) || reMetaLine.MatchString(line) {
			continue
		}
		if m := reIndexEntry.FindStringSubmatch(line); m != nil {
			commands = append(commands, m[1])
		}
	}

	return commands
}

// ParseCommandHelp parses the detail output of '? <command>':
//
//	--------- Help: /teleport -----------------------------
//	Description: Teleport to a player.
//	Usage: /tp <player> [otherplayer]
//	Aliases: tele, etele, teleport
//
// The second return is false when the text contains neither a usage
// line nor aliases.
func ParseCommandHelp(text string) (CommandHelp, bool) {
	var help CommandHelp

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || reHelpHeader.MatchString(line) {
			continue
		}

		if usage, ok := strings.CutPrefix(line, "Usage:"); ok {
			// The usage line starts with the command name; only the
			// part after it describes arguments.
			if m := reUsageCommand.FindStringSubmatch(strings.TrimSpace(usage)); m != nil {
				help.Args = ParseArgs(m[1])
			}
			continue
		}

		if aliases, ok := strings.CutPrefix(line, "Aliases:"); ok {
			for _, a := range strings.Split(aliases, ",") {
				if a = strings.TrimSpace(a); a != "" {
					help.Aliases = append(help.Aliases, a)
				}
			}
		}
	}

	return help, len(help.Args) > 0 || len(help.Aliases) > 0
}

// ParsePlayerList parses the output of the 'online' command:
//
//	There are 2 out of maximum 20 players online.
//	default: Player1, Player2
//	admin: Player3
func ParsePlayerList(text string) []string {
	var players []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "There are ") || strings.HasPrefix(line, "There is ") {
			continue
		}

		_, names, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		for _, name := range strings.Split(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				players = append(players, name)
			}
		}
	}

	return players
}

// Argument alternatives are ordered so the more specific bracketed
// forms match before the bare ones, e.g. [<name>] before [name].
var reArg = regexp.MustCompile(
	`\(([^)]+\|[^)]+)\)` + // required choice: (a|b)
		`|\[(<[^>]+>)\]` + // optional bracketed: [<name>]
		`|\[([^\]]+\|[^\]]+)\]` + // optional choice: [a|b]
		`|\[(\w+)\]` + // optional bare: [name]
		`|<([^>]+)>`, // required: <name>
)

// ParseArgs parses the argument portion of a usage line into typed Arg
// values, in a single left-to-right scan so ordering is correct by
// construction.
func ParseArgs(usage string) []Arg {
	var args []Arg

	for _, m := range reArg.FindAllStringSubmatch(usage, -1) {
		switch {
		case m[1] != "":
			args = append(args, RequiredChoice{Options: splitOptions(m[1])})
		case m[2] != "":
			args = append(args, Optional{Name: strings.Trim(m[2], "<>")})
		case m[3] != "":
			args = append(args, OptionalChoice{Options: splitOptions(m[3])})
		case m[4] != "":
			args = append(args, Optional{Name: m[4]})
		case m[5] != "":
			args = append(args, Required{Name: m[5]})
		}
	}

	return args
}

func splitOptions(s string) []string {
	parts := strings.Split(s, "|")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			options = append(options, p)
		}
	}
	return options
}
