package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseTickers(t *testing.T) {
	got := parseTickers("AAPL\n  MSFT  \r\n\n\tTSLA\n   \n")
	want := []string{"AAPL", "MSFT", "TSLA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReadTickers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid_tickers.txt")
	if err := os.WriteFile(path, []byte("SBER\nGAZP\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tickers, err := ReadTickers(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickers) != 2 || tickers[0] != "SBER" || tickers[1] != "GAZP" {
		t.Errorf("unexpected tickers: %v", tickers)
	}

	if _, err := ReadTickers(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing tickers file")
	}
}
