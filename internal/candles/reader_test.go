package candles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadSeries_IgnoresExtraColumns(t *testing.T) {
	input := "timestamp,date,open,high,low,close,volume\n" +
		"1700000000,2023-11-14,10.10,11.00,10.00,10.50,1200\n" +
		"1700086400,2023-11-15,10.40,12.00,9.00,11.80,900\n"

	series, err := ReadSeries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(series))
	}
	if series[1].Low.String() != "9" || series[1].High.String() != "12" {
		t.Errorf("unexpected second candle: low=%s high=%s", series[1].Low, series[1].High)
	}
}

func TestReadSeries_HeaderNormalization(t *testing.T) {
	input := "\ufeffDate, Low ,HIGH\n2024-01-02,5.5,6\n"
	series, err := ReadSeries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Low.String() != "5.5" {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestReadSeries_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing low", "date,high\n2024-01-02,5\n", ErrMissingColumn},
		{"missing high", "date,low\n2024-01-02,5\n", ErrMissingColumn},
		{"non numeric", "low,high\n5,abc\n", ErrMalformedValue},
		{"empty value", "low,high\n,6\n", ErrMalformedValue},
		{"short row", "date,low,high\n2024-01-02,5\n", ErrMalformedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSeries(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadSeries_Empty(t *testing.T) {
	for _, input := range []string{"", "low,high\n"} {
		series, err := ReadSeries(strings.NewReader(input))
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", input, err)
		}
		if len(series) != 0 {
			t.Fatalf("input %q: expected empty series, got %d candles", input, len(series))
		}
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AAPL_stock_1d_data.csv")
	if err := os.WriteFile(path, []byte("low,high\n1,2\n3,4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{Timeout: 5 * time.Second, MaxRetries: 2}
	series, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(series))
	}
}

func TestLoader_LoadMissingFileIsNotRetried(t *testing.T) {
	loader := Loader{Timeout: 5 * time.Second, MaxRetries: 5}

	start := time.Now()
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("missing file should fail fast, took %v", elapsed)
	}
}

func TestLoader_LoadCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "X_stock_1d_data.csv")
	if err := os.WriteFile(path, []byte("low,high\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Loader{Timeout: time.Second}.Load(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
