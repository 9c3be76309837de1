package batch

import (
	"fmt"
	"os"
	"strings"
)

// ReadTickers reads ticker symbols from a file, one per line. Surrounding
// whitespace is stripped and blank lines are skipped.
func ReadTickers(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tickers file: %w", err)
	}
	return parseTickers(string(content)), nil
}

func parseTickers(content string) []string {
	var tickers []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tickers = append(tickers, line)
		}
	}
	return tickers
}
