package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a batch run on SIGINT or SIGTERM and tells the user
// how far it got.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	done        int
	total       int
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context that is canceled on the first interrupt.
// Call the returned stop function once the batch finishes.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, total int) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancelFunc = cancel
	h.total = total
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// Progress records how many documents have been processed.
func (h *InterruptHandler) Progress(done int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = done
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	if h.interrupted {
		h.mu.Unlock()
		return
	}
	h.interrupted = true
	h.showInterruptMessage()
	cancel := h.cancelFunc
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// showInterruptMessage displays a friendly interrupt message. Callers hold mu.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Extraction interrupted!")
	if h.total > 0 {
		msg += "\n" + FormatInfo(fmt.Sprintf("Processed %d of %d documents.", h.done, h.total))
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the run was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
