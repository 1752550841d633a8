package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":8080", cfg.Addr)
	req.Equal(StoreMemory, cfg.Store)
	req.Equal(30*time.Second, cfg.SnapshotInterval)
	req.Equal(64, cfg.SessionInbox)
}

func TestLoad_FromEnv(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("TEAMBOT_STORE", StoreBadger)
	t.Setenv("TEAMBOT_BADGER_PATH", "/tmp/teambot")
	t.Setenv("TEAMBOT_COMMAND_TIMEOUT", "250ms")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(StoreBadger, cfg.Store)
	req.Equal("/tmp/teambot", cfg.BadgerPath)
	req.Equal(250*time.Millisecond, cfg.CommandTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{Store: StoreMemory, SnapshotInterval: time.Second, CommandTimeout: time.Second, SessionInbox: 1}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "redis" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store = StorePostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.Store = StorePostgres; c.DatabaseURL = "postgres://x" }},
		{name: "zero interval", mutate: func(c *Config) { c.SnapshotInterval = 0 }, wantErr: true},
		{name: "zero inbox", mutate: func(c *Config) { c.SessionInbox = 0 }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
