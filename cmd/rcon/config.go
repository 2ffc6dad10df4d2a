package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultPort = 25575

// CredentialRef points at a password in 1Password.
type CredentialRef struct {
	Vault string `toml:"vault"`
	Item  string `toml:"item"`
	Field string `toml:"field"`
}

// ServerConfig describes one configured server.
type ServerConfig struct {
	Name        string         `toml:"name"`
	Host        string         `toml:"host"`
	Port        int            `toml:"port"`
	Credentials *CredentialRef `toml:"credentials"`
}

// resolveCredentials returns the server's credentials, falling back to
// the configured default.
func (s ServerConfig) resolveCredentials(def *CredentialRef) *CredentialRef {
	if s.Credentials != nil {
		return s.Credentials
	}
	return def
}

// AppConfig is the parsed config file.
type AppConfig struct {
	DefaultServer      string
	DefaultCredentials *CredentialRef
	Servers            map[string]ServerConfig
}

type fileConfig struct {
	Defaults struct {
		Server      string         `toml:"server"`
		Credentials *CredentialRef `toml:"credentials"`
	} `toml:"defaults"`
	Servers map[string]ServerConfig `toml:"servers"`
}

// configDir returns ~/.config/rcon, creating it along with the cache
// subdirectory.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}

	dir := filepath.Join(home, ".config", "rcon")
	if err := os.MkdirAll(filepath.Join(dir, "cache"), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// loadConfig parses the TOML config file. A missing file yields an
// empty config rather than an error.
func loadConfig(path string) (AppConfig, error) {
	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return AppConfig{}, nil
		}
		return AppConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}

	servers := make(map[string]ServerConfig, len(raw.Servers))
	for key, srv := range raw.Servers {
		if srv.Name == "" {
			srv.Name = key
		}
		if srv.Port == 0 {
			srv.Port = defaultPort
		}
		servers[key] = srv
	}

	return AppConfig{
		DefaultServer:      raw.Defaults.Server,
		DefaultCredentials: raw.Defaults.Credentials,
		Servers:            servers,
	}, nil
}

// resolveServer picks the target server from the CLI argument, the
// configured default, or an interactive selection.
//
// The argument may be a configured server key, a host:port pair, or a
// bare hostname (default port).
func resolveServer(arg string, cfg AppConfig) (ServerConfig, error) {
	if arg != "" {
		if srv, ok := cfg.Servers[arg]; ok {
			return srv, nil
		}

		if host, portStr, err := splitHostPortArg(arg); err == nil {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 || port > 65535 {
				return ServerConfig{}, fmt.Errorf("invalid port in %q", arg)
			}
			return ServerConfig{Name: arg, Host: host, Port: port}, nil
		}

		return ServerConfig{Name: arg, Host: arg, Port: defaultPort}, nil
	}

	if cfg.DefaultServer != "" {
		if srv, ok := cfg.Servers[cfg.DefaultServer]; ok {
			return srv, nil
		}
	}

	return selectServer(cfg)
}

func splitHostPortArg(arg string) (host, port string, err error) {
	i := strings.LastIndex(arg, ":")
	if i < 0 {
		return "", "", fmt.Errorf("no port in %q", arg)
	}
	return arg[:i], arg[i+1:], nil
}

// selectServer prompts for a choice among configured servers.
func selectServer(cfg AppConfig) (ServerConfig, error) {
	if len(cfg.Servers) == 0 {
		return ServerConfig{}, fmt.Errorf("no server given and none configured; pass host:port or add servers to the config file")
	}

	keys := make([]string, 0, len(cfg.Servers))
	for key := range cfg.Servers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Println("Available servers:")
	for i, key := range keys {
		srv := cfg.Servers[key]
		fmt.Printf("  %d. %s (%s:%d)\n", i+1, srv.Name, srv.Host, srv.Port)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("\nSelect server [1-%d]: ", len(keys))
		if !scanner.Scan() {
			return ServerConfig{}, fmt.Errorf("no server selected")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && idx >= 1 && idx <= len(keys) {
			return cfg.Servers[keys[idx-1]], nil
		}
		fmt.Printf("Please enter a number between 1 and %d\n", len(keys))
	}
}
