package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/internal/presentation/tui"
)

// errInterrupted is returned by InterruptibleReader once its cancel channel is closed.
var errInterrupted = errors.New("interrupted")

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which signal arrived.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext works like signal.NotifyContext but keeps the signal for Signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate replies on Stdout).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.NewConsole(slog.LevelDebug)
	}
	return logging.NewNop()
}

func createRenderer(markdown bool) tui.Renderer {
	if markdown {
		return tui.NewRenderer(100)
	}
	return tui.Plain
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func printReply(w io.Writer, render tui.Renderer, reply string) error {
	out, err := render(reply)
	if err != nil {
		return fmt.Errorf("failed to render reply: %w", err)
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// InterruptibleReader stops returning data once done is closed, so a REPL
// blocked on stdin ends at the next line after Ctrl+C.
type InterruptibleReader struct {
	base io.Reader
	done <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, done <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{base: base, done: done}
}

func (r *InterruptibleReader) Read(p []byte) (int, error) {
	if r.stopped() {
		return 0, errInterrupted
	}
	n, err := r.base.Read(p)
	if r.stopped() {
		return 0, errInterrupted
	}
	return n, err
}

func (r *InterruptibleReader) stopped() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
