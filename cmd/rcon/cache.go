package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/pior/rcon/helptext"
)

// cacheVersion invalidates on-disk caches when the format changes.
const cacheVersion = 1

type cacheFile struct {
	Version  int                    `json:"version"`
	Commands map[string][]cachedArg `json:"commands"`
}

type cachedArg struct {
	Type    string   `json:"type"`
	Name    string   `json:"name,omitempty"`
	Options []string `json:"options,omitempty"`
}

// cachePath returns the per-server cache file, keyed by a hash of
// host:port so arbitrary hostnames never produce awkward filenames.
func cachePath(dir, host string, port int) string {
	key := xxh3.HashString(fmt.Sprintf("%s:%d", host, port))
	return filepath.Join(dir, "cache", fmt.Sprintf("%016x.json", key))
}

// loadCache reads cached commands. Missing, corrupt or
// version-mismatched files are ignored.
func loadCache(path string) (map[string][]helptext.Arg, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var file cacheFile
	if err := json.Unmarshal(raw, &file); err != nil || file.Version != cacheVersion {
		return nil, false
	}

	commands := make(map[string][]helptext.Arg, len(file.Commands))
	for name, args := range file.Commands {
		decoded, err := decodeArgs(args)
		if err != nil {
			return nil, false
		}
		commands[name] = decoded
	}
	return commands, true
}

// saveCache writes commands to the cache file. An empty command set is
// skipped so a failed crawl never overwrites a good cache.
func saveCache(path string, commands map[string][]helptext.Arg) error {
	if len(commands) == 0 {
		return nil
	}

	file := cacheFile{Version: cacheVersion, Commands: make(map[string][]cachedArg, len(commands))}
	for name, args := range commands {
		file.Commands[name] = encodeArgs(args)
	}

	raw, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func encodeArgs(args []helptext.Arg) []cachedArg {
	out := make([]cachedArg, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case helptext.Required:
			out = append(out, cachedArg{Type: "required", Name: a.Name})
		case helptext.Optional:
			out = append(out, cachedArg{Type: "optional", Name: a.Name})
		case helptext.RequiredChoice:
			out = append(out, cachedArg{Type: "required_choice", Options: a.Options})
		case helptext.OptionalChoice:
			out = append(out, cachedArg{Type: "optional_choice", Options: a.Options})
		}
	}
	return out
}

func decodeArgs(args []cachedArg) ([]helptext.Arg, error) {
	var out []helptext.Arg
	for _, a := range args {
		switch a.Type {
		case "required":
			out = append(out, helptext.Required{Name: a.Name})
		case "optional":
			out = append(out, helptext.Optional{Name: a.Name})
		case "required_choice":
			out = append(out, helptext.RequiredChoice{Options: a.Options})
		case "optional_choice":
			out = append(out, helptext.OptionalChoice{Options: a.Options})
		default:
			return nil, fmt.Errorf("unknown argument type %q", a.Type)
		}
	}
	return out, nil
}
