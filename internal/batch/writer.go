package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// WriteResults writes results to path as CSV with the header
// "Ticker,Min Low,Max High", replacing any existing file. The header is
// written even when results is empty.
func WriteResults(path string, results []TickerResult) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	rows := make([]*resultRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, &resultRow{
			Ticker:  r.Ticker,
			MinLow:  r.MinLow.String(),
			MaxHigh: r.MaxHigh.String(),
		})
	}

	if err := gocsv.Marshal(&rows, file); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	log.Info().Int("rows", len(rows)).Str("path", path).Msg("saved results")
	return nil
}
