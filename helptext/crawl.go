package helptext

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pior/rcon/minefmt"
)

// Runner executes one server command and returns the raw response text.
// *rcon.Client satisfies it.
type Runner interface {
	Command(text string) (string, error)
}

// Crawl fetches the full command catalog: the '?' index page, every
// remaining page, then '? <command>' details for each unique bare name.
// Aliases share the args of their target. Style codes are stripped
// before parsing.
//
// The result maps every known spelling (bare name, namespaced variants,
// aliases) to its argument list.
func Crawl(runner Runner, log zerolog.Logger) (map[string][]Arg, error) {
	firstPage, err := run(runner, "?")
	if err != nil {
		return nil, err
	}

	totalPages := ParsePageCount(firstPage)
	names := ParseIndex(firstPage)
	log.Debug().Int("pages", totalPages).Int("commands", len(names)).Msg("parsed help index page 1")

	for page := 2; page <= totalPages; page++ {
		text, err := run(runner, "? "+strconv.Itoa(page))
		if err != nil {
			return nil, err
		}
		names = append(names, ParseIndex(text)...)
	}

	// Group namespaced variants by bare name so each command's detail
	// page is fetched once.
	bareToFull := make(map[string][]string)
	var bareNames []string
	for _, full := range names {
		bare := full
		if _, after, found := strings.Cut(full, ":"); found {
			bare = after
		}
		if _, seen := bareToFull[bare]; !seen {
			bareNames = append(bareNames, bare)
		}
		bareToFull[bare] = append(bareToFull[bare], full)
	}

	commands := make(map[string][]Arg)
	for _, bare := range bareNames {
		text, err := run(runner, "? "+bare)
		if err != nil {
			return nil, err
		}

		var args []Arg
		if detail, ok := ParseCommandHelp(text); ok {
			args = detail.Args
			for _, alias := range detail.Aliases {
				commands[alias] = args
			}
		} else {
			log.Debug().Str("command", bare).Msg("no parseable help")
		}

		commands[bare] = args
		for _, full := range bareToFull[bare] {
			commands[full] = args
		}
	}

	log.Debug().Int("commands", len(commands)).Msg("help crawl complete")
	return commands, nil
}

// Players fetches the current online player list via the 'online' command.
func Players(runner Runner) ([]string, error) {
	text, err := run(runner, "online")
	if err != nil {
		return nil, err
	}
	return ParsePlayerList(text), nil
}

func run(runner Runner, cmd string) (string, error) {
	text, err := runner.Command(cmd)
	if err != nil {
		return "", err
	}
	return minefmt.Strip(text), nil
}
