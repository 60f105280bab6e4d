package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	API     APIConfig     `envPrefix:"API_"`
	Chart   ChartConfig   `envPrefix:"CHART_"`
	Refresh RefreshConfig `envPrefix:"REFRESH_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Bots    BotsConfig    `envPrefix:"BOTS_"`
	Log     LogConfig     `envPrefix:"LOG_"`
}

// APIConfig holds the remote endpoints.
type APIConfig struct {
	BinanceURL         string        `env:"BINANCE_URL" envDefault:"https://api.binance.com"`
	BinanceFallbackURL string        `env:"BINANCE_FALLBACK_URL" envDefault:"https://api.binance.us"`
	BinanceStreamURL   string        `env:"BINANCE_STREAM_URL" envDefault:"wss://stream.binance.com:9443/ws"`
	CoinGeckoURL       string        `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
	CryptoCompareURL   string        `env:"CRYPTOCOMPARE_URL" envDefault:"https://min-api.cryptocompare.com"`
	FearGreedURL       string        `env:"FEAR_GREED_URL" envDefault:"https://api.alternative.me"`
	Timeout            time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// ChartConfig controls the chart and heat map.
type ChartConfig struct {
	Symbol     string `env:"SYMBOL" envDefault:"BTC"`
	Interval   string `env:"INTERVAL" envDefault:"1D"`
	LiveWindow int    `env:"LIVE_WINDOW" envDefault:"300"`
	HeatmapTop int    `env:"HEATMAP_TOP" envDefault:"10"`
}

// RefreshConfig holds the polling periods.
type RefreshConfig struct {
	Heatmap   time.Duration `env:"HEATMAP" envDefault:"60s"`
	Market    time.Duration `env:"MARKET" envDefault:"60s"`
	Sentiment time.Duration `env:"SENTIMENT" envDefault:"120s"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend       string `env:"BACKEND" envDefault:"file"`
	Dir           string `env:"DIR"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"cryptosage:"`
}

// BotsConfig limits saved trading bots. A zero MaxExposure means no limit.
type BotsConfig struct {
	MaxExposure float64 `env:"MAX_EXPOSURE" envDefault:"0"`
}

// LogConfig controls the file logger. The terminal is owned by the UI so
// logs never go to stdout.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	File  string `env:"FILE"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Store.Dir == "" || cfg.Log.File == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		if cfg.Store.Dir == "" {
			cfg.Store.Dir = dir
		}
		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(dir, "cryptosage.log")
		}
	}

	return cfg, nil
}

// DefaultDir returns ~/.config/cryptosage.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "cryptosage"), nil
}
