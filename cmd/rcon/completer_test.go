package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pior/rcon"
	"github.com/pior/rcon/helptext"
)

func newTestCompleter() *completer {
	dir := rcon.NewDirectory()
	dir.SetCommands(map[string][]helptext.Arg{
		"ban": {
			helptext.Required{Name: "player"},
			helptext.Optional{Name: "reason"},
		},
		"banlist": nil,
		"gamemode": {
			helptext.RequiredChoice{Options: []string{"adventure", "creative", "survival"}},
		},
		"say": {
			helptext.Required{Name: "message"},
		},
	})
	dir.SetPlayers([]string{"Alex", "Steve"})
	return &completer{dir: dir}
}

func complete(c *completer, line string) []string {
	runes, _ := c.Do([]rune(line), len(line))

	out := make([]string, 0, len(runes))
	for _, r := range runes {
		out = append(out, string(r))
	}
	return out
}

func TestCompleterCommands(t *testing.T) {
	c := newTestCompleter()

	t.Run("prefix match", func(t *testing.T) {
		assert.Equal(t, []string{" ", "list "}, complete(c, "ban"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, []string{" ", "list "}, complete(c, "BAN"))
	})

	t.Run("local commands included", func(t *testing.T) {
		assert.Equal(t, []string{"onnect "}, complete(c, "rec"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, complete(c, "zzz"))
	})
}

func TestCompleterArguments(t *testing.T) {
	c := newTestCompleter()

	t.Run("choice options", func(t *testing.T) {
		assert.Equal(t, []string{"adventure ", "creative ", "survival "}, complete(c, "gamemode "))
	})

	t.Run("choice prefix", func(t *testing.T) {
		assert.Equal(t, []string{"eative "}, complete(c, "gamemode cr"))
	})

	t.Run("player names for player args", func(t *testing.T) {
		assert.Equal(t, []string{"Alex ", "Steve "}, complete(c, "ban "))
	})

	t.Run("player prefix", func(t *testing.T) {
		assert.Equal(t, []string{"eve "}, complete(c, "ban St"))
	})

	t.Run("non-player arg offers nothing", func(t *testing.T) {
		assert.Empty(t, complete(c, "say "))
	})

	t.Run("past last argument", func(t *testing.T) {
		assert.Empty(t, complete(c, "gamemode creative "))
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.Empty(t, complete(c, "bogus "))
	})
}

func TestCompleterPrefixLength(t *testing.T) {
	c := newTestCompleter()

	_, length := c.Do([]rune("ban"), 3)
	assert.Equal(t, 3, length)

	_, length = c.Do([]rune("ban Al"), 6)
	assert.Equal(t, 2, length)
}
