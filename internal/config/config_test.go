package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
user = "svc"
password = "from-file"
dbname = "restaurant"

[redis]
addr = "redis:6379"

[kafka]
brokers = "k1:9092, k2:9092"

[reservations]
timezone = "Europe/Berlin"
sweep_interval = 30

[admin]
token = "secret"
`)
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "postgres://svc:from-env@db:5432/restaurant?sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.Equal(t, "30s", cfg.SweepInterval().String())
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_AdminTokenFromEnv(t *testing.T) {
	path := writeConfig(t, "[database]\nhost = \"db\"\n")
	t.Setenv("ADMIN_TOKEN", "env-token")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Admin.Token)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad timezone", "[admin]\ntoken = \"t\"\n[reservations]\ntimezone = \"Mars/Olympus\"\n"},
		{"bad port", "[admin]\ntoken = \"t\"\n[server]\nhttp_port = 70000\n"},
		{"negative sweep", "[admin]\ntoken = \"t\"\n[reservations]\nsweep_interval = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_TOKEN", "")
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_AdminTokenOnlyRequiredToServe(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	cfg, err := Load(writeConfig(t, "[database]\nhost = \"db\"\n"))

	require.NoError(t, err)
	assert.ErrorIs(t, cfg.ValidateServe(), ErrInvalidConfig)

	cfg.Admin.Token = "secret"
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
