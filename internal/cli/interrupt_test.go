package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{name: "with custom writer", writer: &bytes.Buffer{}},
		{name: "with nil writer", writer: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestInterruptCancelsContext(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	ctx, stop := handler.HandleInterrupts(context.Background(), 5)
	defer stop()

	handler.Progress(2)
	handler.interrupt()
	handler.interrupt()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		require.Fail(t, "context was not canceled")
	}

	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, output.String(), "Extraction interrupted!")
	assert.Contains(t, output.String(), "Processed 2 of 5 documents.")
	assert.Equal(t, 1, strings.Count(output.String(), "interrupted"))
}

func TestStopWithoutInterrupt(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	ctx, stop := handler.HandleInterrupts(context.Background(), 0)
	stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}
