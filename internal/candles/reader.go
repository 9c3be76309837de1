package candles

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedValue is returned when a row holds a value that is not a decimal.
	ErrMalformedValue = errors.New("malformed value")
)

const (
	lowColumn  = "low"
	highColumn = "high"
)

// Loader reads candle series from CSV files
type Loader struct {
	// Timeout bounds a single file load including retries. Zero means no limit.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transient read failure.
	MaxRetries int
}

// Load reads the series stored at path. Transient I/O failures are retried with
// exponential backoff; parse errors, missing files and timeouts are not.
func (l Loader) Load(ctx context.Context, path string) (Series, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var series Series
	operation := func() error {
		s, err := readFile(ctx, path)
		if err != nil {
			if isPermanent(ctx, err) {
				return backoff.Permanent(err)
			}
			log.Debug().Err(err).Str("path", path).Msg("retrying candle file read")
			return err
		}
		series = s
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(l.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return series, nil
}

func isPermanent(ctx context.Context, err error) bool {
	var parseErr *csv.ParseError
	return ctx.Err() != nil ||
		errors.As(err, &parseErr) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrMalformedValue) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission)
}

type readResult struct {
	series Series
	err    error
}

// readFile parses the file in a separate goroutine. When ctx expires the
// caller stops waiting, but the goroutine stays blocked until the underlying
// open or read returns.
func readFile(ctx context.Context, path string) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	done := make(chan readResult, 1)
	go func() {
		file, err := os.Open(path)
		if err != nil {
			done <- readResult{err: fmt.Errorf("failed to open candle file: %w", err)}
			return
		}
		defer file.Close()

		series, err := ReadSeries(file)
		done <- readResult{series: series, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("reading %s: %w", path, ctx.Err())
	case res := <-done:
		return res.series, res.err
	}
}

// ReadSeries parses candle rows from CSV. The header must contain "low" and
// "high"; other columns are ignored. An input without a header yields an
// empty series.
func ReadSeries(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Series{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Map header columns to indices
	columns := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	lowIdx, ok := columns[lowColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, lowColumn)
	}
	highIdx, ok := columns[highColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, highColumn)
	}

	series := Series{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		low, err := parseField(record, lowIdx, lowColumn, line)
		if err != nil {
			return nil, err
		}
		high, err := parseField(record, highIdx, highColumn, line)
		if err != nil {
			return nil, err
		}

		series = append(series, Candle{Low: low, High: high})
	}

	return series, nil
}

func parseField(record []string, idx int, name string, line int) (decimal.Decimal, error) {
	if idx >= len(record) {
		return decimal.Decimal{}, fmt.Errorf("%w: line %d has no %q field", ErrMalformedValue, line, name)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(record[idx]))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: line %d %q=%q", ErrMalformedValue, line, name, record[idx])
	}
	return value, nil
}
