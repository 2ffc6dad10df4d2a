// Package minefmt strips or converts Minecraft display style codes
// (§-prefixed) for terminal output. It sits entirely downstream of the
// client: responses are returned raw and formatted at the edge.
package minefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Matches an RGB sequence §x§R§R§G§G§B§B or a single-char code §c.
var reCode = regexp.MustCompile(`§x(?:§[0-9A-Fa-f]){6}|§.`)

const ansiReset = "\033[0m"

// Single-char style codes to ANSI SGR. §k (obfuscated) has no terminal
// equivalent and is dropped.
var ansiByCode = map[byte]string{
	'0': "\033[30m", // black
	'1': "\033[34m", // dark blue
	'2': "\033[32m", // dark green
	'3': "\033[36m", // dark cyan
	'4': "\033[31m", // dark red
	'5': "\033[35m", // dark magenta
	'6': "\033[33m", // gold
	'7': "\033[37m", // gray
	'8': "\033[90m", // dark gray
	'9': "\033[94m", // blue
	'a': "\033[92m", // green
	'b': "\033[96m", // cyan
	'c': "\033[91m", // red
	'd': "\033[95m", // magenta
	'e': "\033[93m", // yellow
	'f': "\033[97m", // white
	'l': "\033[1m",  // bold
	'm': "\033[9m",  // strikethrough
	'n': "\033[4m",  // underline
	'o': "\033[3m",  // italic
	'r': "\033[0m",  // reset
}

// Strip removes all style codes.
func Strip(s string) string {
	return reCode.ReplaceAllString(s, "")
}

// Convert replaces style codes with ANSI escape sequences. RGB codes
// become 24-bit color sequences. A trailing reset is appended when any
// formatting was emitted so the terminal is left clean.
func Convert(s string) string {
	emitted := false

	out := reCode.ReplaceAllStringFunc(s, func(code string) string {
		if strings.HasPrefix(code, "§x") {
			rgb, ok := parseRGB(code)
			if !ok {
				return ""
			}
			emitted = true
			return rgb
		}

		c := strings.ToLower(strings.TrimPrefix(code, "§"))
		if ansi, ok := ansiByCode[c[0]]; ok {
			emitted = true
			return ansi
		}
		return ""
	})

	if emitted {
		out += ansiReset
	}
	return out
}

// Format prepares a server response for display: ANSI colors when color
// is true, plain text otherwise.
func Format(s string, color bool) string {
	if color {
		return Convert(s)
	}
	return Strip(s)
}

// parseRGB converts §x§R§R§G§G§B§B to a 24-bit ANSI color sequence.
func parseRGB(code string) (string, bool) {
	var hex strings.Builder
	for _, r := range code {
		switch r {
		case '§', 'x':
		default:
			hex.WriteRune(r)
		}
	}
	if hex.Len() != 6 {
		return "", false
	}

	s := hex.String()
	r, err1 := strconv.ParseUint(s[0:2], 16, 8)
	g, err2 := strconv.ParseUint(s[2:4], 16, 8)
	b, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b), true
}
