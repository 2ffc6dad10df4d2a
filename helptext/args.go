// Package helptext parses Bukkit/Spigot-style help and player-list
// output into structured command metadata for completion. Pure text
// processing except for Crawl and Players, which drive a command runner.
package helptext

// Arg is one argument slot in a command's usage line.
//
// The concrete types mirror the grammar servers print:
// <name> required, [name] or [<name>] optional, (a|b) required choice,
// [a|b] optional choice.
type Arg interface {
	arg()
}

// Required is a required positional argument like <player>.
type Required struct {
	Name string
}

// Optional is an optional argument like [reason] or [<reason>].
type Optional struct {
	Name string
}

// RequiredChoice is a required choice like (grant|revoke).
type RequiredChoice struct {
	Options []string
}

// OptionalChoice is an optional choice like [survival|creative].
type OptionalChoice struct {
	Options []string
}

func (Required) arg()       {}
func (Optional) arg()       {}
func (RequiredChoice) arg() {}
func (OptionalChoice) arg() {}

// CommandHelp is the parsed detail output for a single command.
type CommandHelp struct {
	Args    []Arg
	Aliases []string
}
