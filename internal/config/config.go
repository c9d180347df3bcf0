package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Yahoo    Yahoo    `mapstructure:"yahoo"`
	Binance  Binance  `mapstructure:"binance"`
	Scan     Scan     `mapstructure:"scan"`
	Trading  Trading  `mapstructure:"trading"`
	Logger   Logger   `mapstructure:"logger"`
	Database Database `mapstructure:"database"`
}

// Yahoo holds the configuration for the Yahoo Finance client.
type Yahoo struct {
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Binance holds the configuration for the Binance public-data client.
type Binance struct {
	Testnet        bool    `mapstructure:"testnet"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Scan holds the configuration for the market scan cycle.
type Scan struct {
	StockSymbols  []string `mapstructure:"stock_symbols"`
	CryptoSymbols []string `mapstructure:"crypto_symbols"`
	Universe      []string `mapstructure:"universe"`
	Threshold     float64  `mapstructure:"threshold"`
	NewsLimit     int      `mapstructure:"news_limit"`
	Schedule      string   `mapstructure:"schedule"`
	RunOnStart    bool     `mapstructure:"run_on_start"`
}

// Trading holds the configuration for the paper trading logic.
type Trading struct {
	FeeRate float64 `mapstructure:"fee_rate"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("yahoo.rate_limit", 5) // requests per second
	viper.SetDefault("yahoo.rate_limit_burst", 2)
	viper.SetDefault("binance.rate_limit", 20)
	viper.SetDefault("binance.rate_limit_burst", 5)
	viper.SetDefault("scan.threshold", 5.0) // +/- percent
	viper.SetDefault("scan.news_limit", 3)
	viper.SetDefault("scan.schedule", "0 */15 * * * *")
	viper.SetDefault("scan.stock_symbols", []string{"AAPL", "TSLA", "NVDA", "MSFT"})
	viper.SetDefault("scan.crypto_symbols", []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"})
	viper.SetDefault("scan.universe", []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "INTC", "AMD",
		"JPM", "V", "MA", "UNH", "HD", "PG", "DIS", "PYPL", "NFLX", "ADBE",
	})
	viper.SetDefault("trading.fee_rate", 0.002) // 0.20% round trip

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
