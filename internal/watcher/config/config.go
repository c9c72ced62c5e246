package config

import (
	"golang-stock-watchlist/pkg/config"
)

// Kiwoom holds the configuration for the Kiwoom Securities REST API.
type Kiwoom struct {
	BaseURL             string `mapstructure:"base_url"`
	AppKey              string `mapstructure:"app_key"`
	SecretKey           string `mapstructure:"secret_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier. ChatIDs is a
// comma-separated list so alerts can fan out to multiple channels.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatIDs  string `mapstructure:"chat_ids"`
}

// Watcher holds the evaluation engine and scheduling configuration.
type Watcher struct {
	TargetRate     float64  `mapstructure:"target_rate"`
	WatchDays      int      `mapstructure:"watch_days"`
	Schedule       string   `mapstructure:"schedule"`
	Timezone       string   `mapstructure:"timezone"`
	RunTimeout     string   `mapstructure:"run_timeout"`
	StockListPaths []string `mapstructure:"stock_list_paths"`
}

// Config holds the full configuration for the watcher service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Kiwoom   Kiwoom          `mapstructure:"kiwoom"`
	Telegram Telegram        `mapstructure:"telegram"`
	Watcher  Watcher         `mapstructure:"watcher"`
}

// Load loads the watcher configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.Watcher.TargetRate == 0 {
		cfg.Watcher.TargetRate = 50.0
	}
	if cfg.Watcher.WatchDays == 0 {
		cfg.Watcher.WatchDays = 5
	}
	if cfg.Watcher.Schedule == "" {
		// weekdays, 20:05 local time, after the daily candle settles
		cfg.Watcher.Schedule = "5 20 * * 1-5"
	}
	if cfg.Watcher.Timezone == "" {
		cfg.Watcher.Timezone = "Asia/Seoul"
	}
	if cfg.Watcher.RunTimeout == "" {
		cfg.Watcher.RunTimeout = "10m"
	}
	if cfg.Kiwoom.MaxRequestPerMinute == 0 {
		cfg.Kiwoom.MaxRequestPerMinute = 120
	}

	return &cfg, nil
}
