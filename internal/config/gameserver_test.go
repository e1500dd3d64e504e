package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultGameServer(t *testing.T) {
	cfg := DefaultGameServer()
	require.Equal(t, 20, cfg.Tick.HotHz)
	require.Equal(t, 5, cfg.Tick.WarmHz)
	require.Equal(t, 16, cfg.Game.ChunkSize)
	require.Equal(t, 280, cfg.Chat.MaxMessageLengthLocal)
}

func TestLoadGameServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadGameServer(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultGameServer(), cfg)
}

func TestLoadGameServer_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gameserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9999\ntick:\n  hot_hz: 30\n"), 0o644))

	cfg, err := LoadGameServer(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Port)
	require.Equal(t, 30, cfg.Tick.HotHz)
	require.Equal(t, 5, cfg.Tick.WarmHz) // untouched fields keep defaults
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "tw", SSLMode: "disable"}
	require.Equal(t, "postgres://u:p@db:5432/tw?sslmode=disable", d.DSN())

	d.MaxConns = 10
	require.Equal(t, "postgres://u:p@db:5432/tw?sslmode=disable&pool_max_conns=10", d.DSN())
}
