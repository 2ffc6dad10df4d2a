package helptext

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner serves canned responses and records the commands it saw.
type scriptedRunner struct {
	responses map[string]string
	commands  []string
	failOn    string
}

func (r *scriptedRunner) Command(text string) (string, error) {
	r.commands = append(r.commands, text)
	if r.failOn != "" && text == r.failOn {
		return "", errors.New("connection lost")
	}
	return r.responses[text], nil
}

func TestCrawl(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"?":     "--------- Help: Index (1/2) ------------\n/ban: Ban a player\n/essentials:tp: Teleport",
		"? 2":   "/msg: Send a private message",
		"? ban": "Usage: /ban <player> [reason]\nAliases: banish",
		"? tp":  "Usage: /tp <player> [otherplayer]",
		"? msg": "Usage: /msg §c<player>§r <message>",
	}}

	commands, err := Crawl(runner, zerolog.Nop())
	require.NoError(t, err)

	// Details are fetched once per bare name, with the bare spelling.
	assert.Contains(t, runner.commands, "? ban")
	assert.Contains(t, runner.commands, "? tp")
	assert.NotContains(t, runner.commands, "? essentials:tp")

	assert.Equal(t, []Arg{Required{Name: "player"}, Optional{Name: "reason"}}, commands["ban"])
	assert.Equal(t, commands["ban"], commands["banish"], "aliases share the target's args")
	assert.Equal(t, commands["tp"], commands["essentials:tp"], "namespaced variants share args")

	// Style codes are stripped before parsing.
	assert.Equal(t, []Arg{Required{Name: "player"}, Required{Name: "message"}}, commands["msg"])
}

func TestCrawlPropagatesRunnerFailure(t *testing.T) {
	runner := &scriptedRunner{
		responses: map[string]string{"?": "/ban: Ban a player"},
		failOn:    "? ban",
	}

	_, err := Crawl(runner, zerolog.Nop())
	require.Error(t, err)
}

func TestPlayers(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]string{
		"online": "§6There are §c2§6 out of maximum §c20§6 players online.§r\ndefault: Alice, Bob",
	}}

	players, err := Players(runner)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, players)
}
