package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sabarim/extremascan/internal/batch"
	"github.com/sabarim/extremascan/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	dataDir     string
	outputDir   string
	outputFile  string
	tickersFile string
	minChange   float64
	maxChange   float64
	workers     int
	readTimeout int
	parquet     bool
	verbose     bool
	version     bool
)

var version_string = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "extremascan",
		Short: "Filter tickers by the swing between their lowest low and highest high",
		Long: `Reads daily candle CSV files for a list of tickers, computes the minimum low and maximum high
of each, keeps tickers whose percentage change falls inside the configured band and writes them to a CSV file.`,
		SilenceUsage: true,
		RunE:         runRootCommand,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "config.yaml", "Path to config file")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding <TICKER>_stock_1d_data.csv files")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for the result file")
	rootCmd.Flags().StringVar(&outputFile, "output-file", "", "Result file name")
	rootCmd.Flags().StringVar(&tickersFile, "tickers-file", "", "File containing tickers, one per line")
	rootCmd.Flags().Float64Var(&minChange, "min-change", 0, "Minimum percentage change (inclusive)")
	rootCmd.Flags().Float64Var(&maxChange, "max-change", 0, "Maximum percentage change (inclusive)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent ticker workers")
	rootCmd.Flags().IntVar(&readTimeout, "read-timeout", 0, "Per-file read timeout in seconds")
	rootCmd.Flags().BoolVar(&parquet, "parquet", false, "Also write results in Parquet format")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&version, "version", false, "Print version information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the global logger
func setupLogging(logLevel string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func runRootCommand(cmd *cobra.Command, args []string) error {
	if version {
		fmt.Printf("extremascan version %s\n", version_string)
		return nil
	}

	// Console output before the configured level is known
	setupLogging("info")

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Command-line flags override file and environment
	if dataDir != "" {
		cfg.Data.TickersCandlesData = dataDir
	}
	if tickersFile != "" {
		cfg.Data.TickersFile = tickersFile
	}
	if outputDir != "" {
		cfg.Output.OutputFolder = outputDir
	}
	if outputFile != "" {
		cfg.Output.OutputFile = outputFile
	}
	if parquet {
		cfg.Output.ParquetEnabled = true
	}
	if cmd.Flags().Changed("min-change") {
		cfg.Filter.MinPercentageChangeThreshold = minChange
	}
	if cmd.Flags().Changed("max-change") {
		cfg.Filter.MaxPercentageChangeCondor = maxChange
	}
	if workers > 0 {
		cfg.Runner.Workers = workers
	}
	if readTimeout > 0 {
		cfg.Runner.ReadTimeout = readTimeout
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg.LogLevel)

	log.Debug().
		Str("data_dir", cfg.Data.TickersCandlesData).
		Str("tickers_file", cfg.Data.TickersFile).
		Str("output", cfg.OutputPath()).
		Float64("min_change", cfg.Filter.MinPercentageChangeThreshold).
		Float64("max_change", cfg.Filter.MaxPercentageChangeCondor).
		Msg("configuration loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tickers, err := batch.ReadTickers(cfg.Data.TickersFile)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(&cfg)
	if _, err := runner.Run(ctx, tickers); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	return nil
}
