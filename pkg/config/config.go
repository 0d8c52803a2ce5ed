// Package config handles application configuration using Viper
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raykavin/forexwatch/pkg/analysis"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/notification"
	"github.com/raykavin/forexwatch/pkg/voice"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Default configuration values
const (
	DefaultStoragePath = "./forexwatch.db"
)

// AppConfig holds the full application configuration
type AppConfig struct {
	Settings    *core.Settings
	Voice       voice.Config
	Analysis    analysis.Config
	Mail        notification.MailParams
	StoragePath string
}

// Load reads configuration from a .env file (when present) and the
// environment. Duration fields accept human-readable values like "5m"
// or "90s".
func Load() (*AppConfig, error) {
	// Missing .env is fine, credentials may come from the environment
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Optional config file, environment variables take precedence
	if file := viper.GetString("CONFIG_FILE"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetDefault("STORAGE_PATH", DefaultStoragePath)
	viper.SetDefault("TELEGRAM_ENABLED", false)
	viper.SetDefault("ANALYSIS_MODEL", "deepseek-r1")
	viper.SetDefault("SMTP_PORT", 587)

	settings := core.DefaultSettings()

	if pairs := viper.GetString("MONITORED_PAIRS"); pairs != "" {
		settings.Pairs = splitList(pairs)
	}
	for _, pair := range settings.Pairs {
		if err := core.ValidatePair(pair); err != nil {
			return nil, err
		}
	}

	if keywords := viper.GetString("NEWS_KEYWORDS"); keywords != "" {
		settings.NewsKeywords = splitList(keywords)
	}

	if v := viper.GetFloat64("THRESHOLD_EMERGENCY"); v > 0 {
		settings.Thresholds.Emergency = v
	}
	if v := viper.GetFloat64("THRESHOLD_SPIKE"); v > 0 {
		settings.Thresholds.Spike = v
	}
	if settings.Thresholds.Spike >= settings.Thresholds.Emergency {
		return nil, fmt.Errorf("spike threshold %.2f must be below emergency threshold %.2f",
			settings.Thresholds.Spike, settings.Thresholds.Emergency)
	}

	var err error
	if settings.Cooldown, err = durationOr("ALERT_COOLDOWN", settings.Cooldown); err != nil {
		return nil, err
	}
	if settings.PollInterval, err = durationOr("POLL_INTERVAL", settings.PollInterval); err != nil {
		return nil, err
	}
	if settings.NewsInterval, err = durationOr("NEWS_INTERVAL", settings.NewsInterval); err != nil {
		return nil, err
	}
	if settings.StatusInterval, err = durationOr("STATUS_INTERVAL", settings.StatusInterval); err != nil {
		return nil, err
	}

	if v := viper.GetInt("VOICE_PRIORITY_CEILING"); v > 0 {
		settings.VoiceCeiling = v
	}

	settings.Telegram = core.TelegramSettings{
		Enabled: viper.GetBool("TELEGRAM_ENABLED"),
		Token:   viper.GetString("TELEGRAM_TOKEN"),
		Users:   viper.GetIntSlice("TELEGRAM_USERS"),
	}

	return &AppConfig{
		Settings: settings,
		Voice: voice.Config{
			Username: viper.GetString("AFRICASTALKING_USERNAME"),
			APIKey:   viper.GetString("AFRICASTALKING_API_KEY"),
			From:     viper.GetString("AFRICASTALKING_VIRTUAL_NUMBER"),
			To:       viper.GetString("ALERT_PHONE_NUMBER"),
		},
		Analysis: analysis.Config{
			BaseURL: viper.GetString("ANALYSIS_BASE_URL"),
			APIKey:  viper.GetString("ANALYSIS_API_KEY"),
			Model:   viper.GetString("ANALYSIS_MODEL"),
		},
		Mail: notification.MailParams{
			SMTPServerAddress: viper.GetString("SMTP_SERVER"),
			SMTPServerPort:    viper.GetInt("SMTP_PORT"),
			From:              viper.GetString("SMTP_FROM"),
			Password:          viper.GetString("SMTP_PASSWORD"),
			To:                viper.GetString("ALERT_EMAIL"),
		},
		StoragePath: viper.GetString("STORAGE_PATH"),
	}, nil
}

// durationOr parses a duration environment variable, keeping the
// fallback when the variable is unset
func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	value := viper.GetString(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := str2duration.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
