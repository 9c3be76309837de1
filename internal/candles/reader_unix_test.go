//go:build unix

package candles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// stalledFile creates a FIFO with no writer, so opening it for reading blocks.
func stalledFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := syscall.Mkfifo(path, 0644); err != nil {
		t.Skipf("mkfifo not available: %v", err)
	}
	// Unblock the abandoned reader goroutine once the test is done.
	t.Cleanup(func() {
		if f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
			f.Close()
		}
	})
	return path
}

func TestLoader_LoadTimesOutOnStalledFile(t *testing.T) {
	path := stalledFile(t, t.TempDir(), "HANG_stock_1d_data.csv")

	timeout := 200 * time.Millisecond
	loader := Loader{Timeout: timeout, MaxRetries: 3}

	start := time.Now()
	_, err := loader.Load(context.Background(), path)
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed < timeout {
		t.Errorf("load returned before the timeout: %v", elapsed)
	}
	if elapsed > timeout+2*time.Second {
		t.Errorf("load took %v, expected about %v", elapsed, timeout)
	}
}
