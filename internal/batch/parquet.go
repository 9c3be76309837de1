package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ParquetPath derives the parquet file name from the CSV output path.
func ParquetPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".parquet"
}

// WriteResultsParquet writes results to a GZIP compressed parquet file
func WriteResultsParquet(filename string, results []TickerResult) error {
	fw, err := local.NewLocalFileWriter(filename)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ResultDataPoint), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_GZIP

	for _, r := range results {
		point := ResultDataPoint{
			Ticker:  r.Ticker,
			MinLow:  r.MinLow.InexactFloat64(),
			MaxHigh: r.MaxHigh.InexactFloat64(),
		}
		if err := pw.Write(point); err != nil {
			return fmt.Errorf("failed to write parquet data: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	log.Info().Int("rows", len(results)).Str("path", filename).Msg("saved parquet results")
	return nil
}
