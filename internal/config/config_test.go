package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzhaqCom/theone/internal/config"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTempConfig(t, `
database:
  host: db.local
  port: 5432
  user: combat
  password: secret
  name: theone
  sslmode: disable
logging:
  level: debug
  format: json
combat:
  turn_delay: 800ms
  low_hp_threshold: 0.25
content:
  enemies_dir: content/enemies
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 800*time.Millisecond, cfg.Combat.TurnDelay)
	assert.Equal(t, 0.25, cfg.Combat.LowHPThreshold)
	// Defaults fill in everything the file omits.
	assert.Equal(t, 8, cfg.Combat.GridWidth)
	assert.Equal(t, 6, cfg.Combat.GridHeight)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestValidate_RejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Combat.LowHPThreshold = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low_hp_threshold")
}

func TestValidate_RejectsNegativeTurnDelay(t *testing.T) {
	cfg := config.Default()
	cfg.Combat.TurnDelay = -time.Second
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turn_delay")
}

func TestValidate_RejectsBadLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())
}

func TestLoadFromViper_Defaults(t *testing.T) {
	v := viper.New()
	// No values set beyond what Default seeds; build by hand to exercise the path.
	v.Set("database.host", "localhost")
	v.Set("database.port", 5432)
	v.Set("database.user", "test")
	v.Set("database.name", "test")
	v.Set("database.sslmode", "disable")
	v.Set("database.max_conns", 5)
	v.Set("database.min_conns", 1)
	v.Set("logging.level", "info")
	v.Set("logging.format", "console")
	v.Set("combat.turn_delay", "1s")
	v.Set("combat.low_hp_threshold", 0.3)
	v.Set("combat.grid_width", 8)
	v.Set("combat.grid_height", 6)
	v.Set("content.enemies_dir", "content/enemies")

	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Combat.TurnDelay)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
}

func TestDSN_Format(t *testing.T) {
	d := config.DatabaseConfig{
		Host: "h", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", d.DSN())
}
