package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "riskengine", cfg.Database.DBName)
	assert.Equal(t, []string{"BRENT", "WTI", "GASOIL"}, cfg.Analysis.Symbols)
	assert.Equal(t, "15m", cfg.Analysis.CacheTTL)
	assert.Equal(t, 20, cfg.Analysis.RollingWindow)
	assert.Equal(t, "0 6 * * *", cfg.Reports.DailyCron)
	assert.Equal(t, "0 6 * * 1", cfg.Reports.WeeklyCron)
	assert.Equal(t, "0 6 1 * *", cfg.Reports.MonthlyCron)
	assert.Equal(t, "json", cfg.Reports.Format)
	assert.False(t, cfg.Reports.AutoDistribute)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	// Environment is normalized to lower case.
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_TelegramTokenFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := loadClean(t)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
}

func TestLoad_InvalidDurationRejected(t *testing.T) {
	t.Setenv("REPORTS_RUN_TIMEOUT", "five minutes")

	_, err := loadClean(t)

	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, Duration("", 30*time.Second))
	assert.Equal(t, 2*time.Minute, Duration("2m", time.Hour))
	assert.Equal(t, time.Hour, Duration("bogus", time.Hour))
}
