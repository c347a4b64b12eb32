package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/checkpoint/server/internal/config"
)

// repeatingReader yields the same scanner line forever, like a camera held
// on one code.
type repeatingReader struct{ line []byte }

func (r repeatingReader) Read(p []byte) (int, error) {
	n := 0
	for n+len(r.line) <= len(p) {
		n += copy(p[n:], r.line)
	}
	if n == 0 {
		n = copy(p, r.line)
	}
	return n, nil
}

// firstWrite closes ready on the first printed result.
type firstWrite struct {
	once  sync.Once
	ready chan struct{}
}

func (w *firstWrite) Write(p []byte) (int, error) {
	w.once.Do(func() { close(w.ready) })
	return len(p), nil
}

func scanOptions(t *testing.T) *KioskOptions {
	t.Helper()
	return &KioskOptions{
		RootOptions: &RootOptions{
			Config: config.Config{
				DBPath: filepath.Join(t.TempDir(), "checkpoint.db"),
				Env:    "dev",
			},
			Logger: slog.New(slog.DiscardHandler),
		},
		Kiosk:    "front",
		Location: "front-desk",
	}
}

func TestRunScan_ReturnsAfterCancelWithEndlessInput(t *testing.T) {
	for i := 0; i < 20; i++ {
		opts := scanOptions(t)
		ctx, cancel := context.WithCancel(context.Background())

		out := &firstWrite{ready: make(chan struct{})}
		done := make(chan error, 1)
		go func() {
			done <- runScan(ctx, opts, repeatingReader{line: []byte("7777\n")}, out)
		}()

		select {
		case <-out.ready:
		case err := <-done:
			cancel()
			t.Fatalf("run %d: scan returned before reading: %v", i, err)
		case <-time.After(5 * time.Second):
			cancel()
			t.Fatalf("run %d: no check-in printed", i)
		}
		time.Sleep(time.Duration(i%5) * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err, "run %d", i)
		case <-time.After(3 * time.Second):
			t.Fatalf("run %d: scan did not return after cancel", i)
		}
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestRunScan_ReturnsReadError(t *testing.T) {
	readErr := io.ErrUnexpectedEOF

	err := runScan(context.Background(), scanOptions(t), failingReader{err: readErr}, io.Discard)

	assert.ErrorIs(t, err, readErr)
}
