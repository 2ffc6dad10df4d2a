package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[defaults]
server = "survival"

[defaults.credentials]
vault = "Private"
item = "Minecraft"

[servers.survival]
host = "mc.example.com"
port = 25566

[servers.creative]
name = "Creative World"
host = "creative.example.com"

[servers.creative.credentials]
vault = "Shared"
item = "Creative RCON"
field = "rcon-password"
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "survival", cfg.DefaultServer)
	require.NotNil(t, cfg.DefaultCredentials)
	assert.Equal(t, "Private", cfg.DefaultCredentials.Vault)
	assert.Equal(t, "Minecraft", cfg.DefaultCredentials.Item)

	survival := cfg.Servers["survival"]
	assert.Equal(t, "survival", survival.Name) // defaults to the key
	assert.Equal(t, "mc.example.com", survival.Host)
	assert.Equal(t, 25566, survival.Port)
	assert.Nil(t, survival.Credentials)

	creative := cfg.Servers["creative"]
	assert.Equal(t, "Creative World", creative.Name)
	assert.Equal(t, defaultPort, creative.Port)
	require.NotNil(t, creative.Credentials)
	assert.Equal(t, "rcon-password", creative.Credentials.Field)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Servers)
	assert.Empty(t, cfg.DefaultServer)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `[servers.broken`)

	_, err := loadConfig(path)
	require.Error(t, err)
}

func TestResolveCredentialsFallback(t *testing.T) {
	def := &CredentialRef{Vault: "Private", Item: "Default"}
	own := &CredentialRef{Vault: "Shared", Item: "Own"}

	assert.Equal(t, own, ServerConfig{Credentials: own}.resolveCredentials(def))
	assert.Equal(t, def, ServerConfig{}.resolveCredentials(def))
	assert.Nil(t, ServerConfig{}.resolveCredentials(nil))
}

func TestResolveServer(t *testing.T) {
	cfg := AppConfig{
		DefaultServer: "main",
		Servers: map[string]ServerConfig{
			"main":  {Name: "main", Host: "mc.example.com", Port: 25575},
			"other": {Name: "other", Host: "other.example.com", Port: 25599},
		},
	}

	t.Run("configured key", func(t *testing.T) {
		srv, err := resolveServer("other", cfg)
		require.NoError(t, err)
		assert.Equal(t, "other.example.com", srv.Host)
		assert.Equal(t, 25599, srv.Port)
	})

	t.Run("host and port", func(t *testing.T) {
		srv, err := resolveServer("10.0.0.5:25570", cfg)
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.5", srv.Host)
		assert.Equal(t, 25570, srv.Port)
	})

	t.Run("bare host", func(t *testing.T) {
		srv, err := resolveServer("mc.local", cfg)
		require.NoError(t, err)
		assert.Equal(t, "mc.local", srv.Host)
		assert.Equal(t, defaultPort, srv.Port)
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := resolveServer("mc.local:notaport", cfg)
		require.Error(t, err)
	})

	t.Run("default server", func(t *testing.T) {
		srv, err := resolveServer("", cfg)
		require.NoError(t, err)
		assert.Equal(t, "mc.example.com", srv.Host)
	})
}
