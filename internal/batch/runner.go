package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/sabarim/extremascan/internal/candles"
	"github.com/sabarim/extremascan/internal/config"
	"github.com/sabarim/extremascan/internal/extremum"
	"github.com/sourcegraph/conc/pool"
)

const maxDefaultWorkers = 32

// Runner evaluates a list of tickers concurrently and writes the accepted ones
type Runner struct {
	config  *config.Config
	loader  candles.Loader
	band    extremum.Band
	workers int
}

// NewRunner creates a runner from the loaded configuration
func NewRunner(config *config.Config) *Runner {
	workers := config.Runner.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}

	return &Runner{
		config: config,
		loader: candles.Loader{
			Timeout:    config.ReadTimeoutDuration(),
			MaxRetries: config.Runner.MaxRetries,
		},
		band:    extremum.NewBand(config.Filter.MinPercentageChangeThreshold, config.Filter.MaxPercentageChangeCondor),
		workers: workers,
	}
}

// defaultWorkers matches the host default used by thread pools: one per CPU
// plus a few for blocking I/O, capped.
func defaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}

// SourcePath returns the candle file location for ticker
func (r *Runner) SourcePath(ticker string) string {
	return filepath.Join(r.config.Data.TickersCandlesData, fmt.Sprintf("%s_stock_1d_data.csv", ticker))
}

// Run evaluates every ticker on the worker pool, waits for all of them and
// writes the accepted results in submission order. Per-ticker failures are
// logged and excluded; only a failure to write the output is returned.
func (r *Runner) Run(ctx context.Context, tickers []string) (Summary, error) {
	log.Info().Int("tickers", len(tickers)).Int("workers", r.workers).Msg("processing tickers")

	results := make([]TickerResult, len(tickers))
	outcomes := make([]Outcome, len(tickers))

	p := pool.New().WithMaxGoroutines(r.workers)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		p.Go(func() {
			results[i], outcomes[i] = r.processTicker(ctx, ticker)
		})
	}
	p.Wait()

	summary := Summary{Submitted: len(tickers)}
	accepted := make([]TickerResult, 0, len(tickers))
	for i, outcome := range outcomes {
		summary.add(outcome)
		if outcome == OutcomeAccepted {
			accepted = append(accepted, results[i])
		}
	}

	outputPath := r.config.OutputPath()
	if err := WriteResults(outputPath, accepted); err != nil {
		return summary, err
	}

	if r.config.Output.ParquetEnabled {
		if err := WriteResultsParquet(ParquetPath(outputPath), accepted); err != nil {
			return summary, err
		}
	}

	log.Info().
		Int("submitted", summary.Submitted).
		Int("accepted", summary.Accepted).
		Int("rejected", summary.Rejected).
		Int("missing", summary.Missing).
		Int("failed", summary.Failed).
		Msg("ticker processing completed")

	return summary, nil
}

// processTicker runs locate, load and evaluate for one ticker. It never
// returns an error: every failure is logged and reported as an Outcome.
func (r *Runner) processTicker(ctx context.Context, ticker string) (TickerResult, Outcome) {
	path := r.SourcePath(ticker)
	logger := log.With().Str("ticker", ticker).Str("path", path).Logger()

	if err := ctx.Err(); err != nil {
		logger.Error().Err(err).Msg("skipping ticker, run cancelled")
		return TickerResult{}, OutcomeFailed
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Msg("candle file not found")
			return TickerResult{}, OutcomeMissing
		}
		logger.Error().Err(err).Msg("cannot access candle file")
		return TickerResult{}, OutcomeFailed
	}

	series, err := r.loader.Load(ctx, path)
	if err != nil {
		logger.Error().Err(err).Msg("error reading candle file")
		return TickerResult{}, OutcomeFailed
	}

	extremes, ok, err := extremum.Evaluate(series, r.band)
	if err != nil {
		logger.Error().Err(err).Int("candles", len(series)).Msg("cannot evaluate ticker")
		return TickerResult{}, OutcomeFailed
	}
	if !ok {
		logger.Debug().Int("candles", len(series)).Msg("ticker outside percentage change band")
		return TickerResult{}, OutcomeRejected
	}

	logger.Debug().
		Str("min_low", extremes.MinLow.String()).
		Str("max_high", extremes.MaxHigh.String()).
		Msg("ticker accepted")

	return TickerResult{Ticker: ticker, MinLow: extremes.MinLow, MaxHigh: extremes.MaxHigh}, OutcomeAccepted
}
