package minefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no codes", "plain text", "plain text"},
		{"single color", "§aGreen text", "Green text"},
		{"mixed codes", "§l§4Bold red§r normal", "Bold red normal"},
		{"rgb code", "§x§F§F§0§0§0§0Custom red", "Custom red"},
		{"obfuscated", "§khidden§r", "hidden"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no codes untouched", "plain text", "plain text"},
		{"color with reset appended", "§aGreen", "\033[92mGreen\033[0m"},
		{"uppercase code", "§AGreen", "\033[92mGreen\033[0m"},
		{"bold", "§lStrong", "\033[1mStrong\033[0m"},
		{"rgb", "§x§F§F§8§8§0§0warm", "\033[38;2;255;136;0mwarm\033[0m"},
		{"obfuscated dropped", "§khidden", "hidden"},
		{"explicit reset code", "§cred§r", "\033[91mred\033[0m\033[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.in))
		})
	}
}

func TestFormat(t *testing.T) {
	in := "§eYellow"
	assert.Equal(t, "\033[93mYellow\033[0m", Format(in, true))
	assert.Equal(t, "Yellow", Format(in, false))
}
