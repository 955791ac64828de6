package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted is returned by commands stopped by SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// InterruptHandler cancels a command's context on SIGINT or SIGTERM and tells
// the user what happened to their output.
type InterruptHandler struct {
	writer      io.Writer
	task        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that reports to writer, or stdout
// when writer is nil.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context canceled on the first signal. task names
// the work in the interrupt message. Call stop once the work is done to
// release the signal subscription.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, task string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.task = task

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Interrupted!")
	if h.task != "" {
		msg += "\n" + FormatInfo(fmt.Sprintf("Stopped while %s. Nothing was written; rerun the command to start over.", h.task))
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted reports whether a signal arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Err replaces err with ErrInterrupted when a signal caused it.
func (h *InterruptHandler) Err(err error) error {
	if err != nil && h.WasInterrupted() {
		return fmt.Errorf("%s: %w", h.task, ErrInterrupted)
	}
	return err
}
