package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config defines the application configuration structure
type Config struct {
	Data     DataConfig   `mapstructure:"data"`
	Output   OutputConfig `mapstructure:"output"`
	Filter   FilterConfig `mapstructure:"filter"`
	Runner   RunnerConfig `mapstructure:"runner"`
	LogLevel string       `mapstructure:"log_level"`
}

// DataConfig defines where ticker lists and candle files are read from
type DataConfig struct {
	TickersCandlesData string `mapstructure:"tickers_candles_data"`
	TickersFile        string `mapstructure:"tickers_file"`
}

// OutputConfig defines where accepted results are written
type OutputConfig struct {
	OutputFolder   string `mapstructure:"output_folder"`
	OutputFile     string `mapstructure:"output_file"`
	ParquetEnabled bool   `mapstructure:"parquet_enabled"`
}

// FilterConfig defines the inclusive percentage-change acceptance band
type FilterConfig struct {
	MinPercentageChangeThreshold float64 `mapstructure:"min_percentage_change_threshold"`
	MaxPercentageChangeCondor    float64 `mapstructure:"max_percentage_change_condor"`
	// ExtremumCount is reserved for sequential extremum detection and is not read by the scanner.
	ExtremumCount                int     `mapstructure:"extremum_count"`
}

// RunnerConfig defines worker pool and file read limits
type RunnerConfig struct {
	Workers     int `mapstructure:"workers"`
	ReadTimeout int `mapstructure:"read_timeout"`
	MaxRetries  int `mapstructure:"max_retries"`
}

// OutputPath returns the full path of the result CSV.
func (c Config) OutputPath() string {
	return filepath.Join(c.Output.OutputFolder, c.Output.OutputFile)
}

// ReadTimeoutDuration returns the per-file read timeout.
func (c Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.Runner.ReadTimeout) * time.Second
}

// LoadConfig loads configuration from file and overrides with environment variables
func LoadConfig(path string) (Config, error) {
	// A .env file is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Zero is a valid value for these, so they cannot go through applyDefaults
	v.SetDefault("filter.min_percentage_change_threshold", 5)
	v.SetDefault("filter.max_percentage_change_condor", 20)
	v.SetDefault("filter.extremum_count", 4)
	v.SetDefault("runner.max_retries", 3)

	// Environment variables keep the option names used by existing deployments
	v.BindEnv("data.tickers_candles_data", "TICKERS_CANDLES_DATA")
	v.BindEnv("data.tickers_file", "TICKERS_FILE")

	v.BindEnv("output.output_folder", "OUTPUT_FOLDER")
	v.BindEnv("output.output_file", "OUTPUT_FILE")
	v.BindEnv("output.parquet_enabled", "EXTREMASCAN_PARQUET_ENABLED")

	v.BindEnv("filter.min_percentage_change_threshold", "MIN_PERCENTAGE_CHANGE_THRESHOLD")
	v.BindEnv("filter.max_percentage_change_condor", "MAX_PERCENTAGE_CHANGE_CONDOR")
	v.BindEnv("filter.extremum_count", "EXTREMUM_COUNT")

	v.BindEnv("runner.workers", "EXTREMASCAN_WORKERS")
	v.BindEnv("runner.read_timeout", "EXTREMASCAN_READ_TIMEOUT")
	v.BindEnv("runner.max_retries", "EXTREMASCAN_MAX_RETRIES")

	v.BindEnv("log_level", "EXTREMASCAN_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found, falling back to environment variables")
		default:
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("loaded config file, environment variables take precedence")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	return config, nil
}

// applyDefaults sets default values for any config values not set from file or environment
func applyDefaults(config *Config) {
	if config.Data.TickersCandlesData == "" {
		config.Data.TickersCandlesData = "./tickers_data"
	}
	if config.Data.TickersFile == "" {
		config.Data.TickersFile = "./valid_tickers.txt"
	}

	if config.Output.OutputFolder == "" {
		config.Output.OutputFolder = "./output"
	}
	if config.Output.OutputFile == "" {
		config.Output.OutputFile = "result.csv"
	}

	if config.Runner.ReadTimeout == 0 {
		config.Runner.ReadTimeout = 30
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.Data.TickersCandlesData == "" {
		return fmt.Errorf("data.tickers_candles_data is required")
	}
	if c.Data.TickersFile == "" {
		return fmt.Errorf("data.tickers_file is required")
	}
	if c.Output.OutputFolder == "" || c.Output.OutputFile == "" {
		return fmt.Errorf("output.output_folder and output.output_file are required")
	}
	if c.Filter.MinPercentageChangeThreshold > c.Filter.MaxPercentageChangeCondor {
		return fmt.Errorf("filter.min_percentage_change_threshold (%v) exceeds filter.max_percentage_change_condor (%v)",
			c.Filter.MinPercentageChangeThreshold, c.Filter.MaxPercentageChangeCondor)
	}
	if c.Runner.Workers < 0 {
		return fmt.Errorf("runner.workers must not be negative")
	}
	if c.Runner.ReadTimeout <= 0 {
		return fmt.Errorf("runner.read_timeout must be positive")
	}
	if c.Runner.MaxRetries < 0 {
		return fmt.Errorf("runner.max_retries must not be negative")
	}
	return nil
}
