package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
	Alerts      AlertsConfig   `mapstructure:"alerts"`
	Limits      LimitsConfig   `mapstructure:"limits"`
	Reports     ReportsConfig  `mapstructure:"reports"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AnalysisConfig struct {
	Symbols       []string `mapstructure:"symbols"`
	CacheTTL      string   `mapstructure:"cache_ttl"`
	RollingWindow int      `mapstructure:"rolling_window"`
}

// ThresholdConfig is the per-symbol alert threshold set.
type ThresholdConfig struct {
	PriceMovePct       float64 `mapstructure:"price_move_pct"`
	VaRBreachThreshold float64 `mapstructure:"var_breach_threshold"`
	StaleDataMaxAge    string  `mapstructure:"stale_data_max_age"`
}

type AlertsConfig struct {
	Thresholds map[string]ThresholdConfig `mapstructure:"thresholds"`
}

// LimitsConfig maps product to its gross exposure limit.
type LimitsConfig struct {
	Products map[string]float64 `mapstructure:"products"`
}

type ReportsConfig struct {
	DailyCron           string   `mapstructure:"daily_cron"`
	WeeklyCron          string   `mapstructure:"weekly_cron"`
	MonthlyCron         string   `mapstructure:"monthly_cron"`
	Recipients          []string `mapstructure:"recipients"`
	AutoDistribute      bool     `mapstructure:"auto_distribute"`
	Format              string   `mapstructure:"format"`
	DistributionTimeout string   `mapstructure:"distribution_timeout"`
	RunTimeout          string   `mapstructure:"run_timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"analysis.cache_ttl", config.Analysis.CacheTTL},
		{"reports.distribution_timeout", config.Reports.DistributionTimeout},
		{"reports.run_timeout", config.Reports.RunTimeout},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", field.name, err)
		}
	}

	for symbol, thresholds := range config.Alerts.Thresholds {
		if thresholds.StaleDataMaxAge == "" {
			continue
		}
		if _, err := time.ParseDuration(thresholds.StaleDataMaxAge); err != nil {
			return nil, fmt.Errorf("invalid stale_data_max_age for %s: %w", symbol, err)
		}
	}

	return &config, nil
}

// Duration parses a duration field that Load already validated, falling back
// to def when the field is empty.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "riskengine")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("analysis.symbols", []string{"BRENT", "WTI", "GASOIL"})
	viper.SetDefault("analysis.cache_ttl", "15m")
	viper.SetDefault("analysis.rolling_window", 20)

	viper.SetDefault("limits.products", map[string]float64{})

	viper.SetDefault("reports.daily_cron", "0 6 * * *")
	viper.SetDefault("reports.weekly_cron", "0 6 * * 1")
	viper.SetDefault("reports.monthly_cron", "0 6 1 * *")
	viper.SetDefault("reports.recipients", []string{})
	viper.SetDefault("reports.auto_distribute", false)
	viper.SetDefault("reports.format", "json")
	viper.SetDefault("reports.distribution_timeout", "30s")
	viper.SetDefault("reports.run_timeout", "5m")

	viper.SetDefault("telegram.bot_token", "")
}
