// Package notify shows classified request failures to the operator.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
)

// Writer prints one "Error: <message>" line per failure. It is separate from
// the diagnostics log, which stays silent at the default level.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	logger zerolog.Logger
	count  int
}

// New returns a notifier printing to out
func New(out io.Writer, logger zerolog.Logger) *Writer {
	return &Writer{out: out, logger: logger}
}

// Notify prints the operator-facing message of err
func (w *Writer) Notify(err *apierror.Error) {
	if err == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.count++
	fmt.Fprintf(w.out, "Error: %s\n", err.Message)

	w.logger.Debug().
		Str("kind", string(err.Kind)).
		Int("status", err.Status).
		Err(err.Err).
		Msg("Notified operator")
}

// Count returns how many failures were shown
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
