package cli

import (
	"bytes"
	"context"
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

func TestNewInterruptHandlerDefaultsWriter(t *testing.T) {
	h := NewInterruptHandler(nil)
	assert.NotNil(t, h.writer)
	assert.False(t, h.WasInterrupted())
}

func TestInterruptPrintsSummaryOnce(t *testing.T) {
	var out syncBuffer
	h := NewInterruptHandler(&out)
	h.SetSummary(func() string { return "Imported 3 of 10 transactions" })

	h.Interrupt()
	h.Interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, bytes.Count([]byte(out.String()), []byte("Interrupted!")))
	assert.Contains(t, out.String(), "Imported 3 of 10 transactions")
}

func TestHandleInterruptsStop(t *testing.T) {
	h := NewInterruptHandler(&syncBuffer{})

	ctx, stop := h.HandleInterrupts(context.Background())
	require.NoError(t, ctx.Err())

	stop()
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled by stop")
	}
	assert.False(t, h.WasInterrupted())
}
