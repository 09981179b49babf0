// Package telemetry records one OpenTelemetry span per build task and
// forwards span lifecycle and task output to a ports.Renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultChunkSize is the output size that triggers an immediate chunk.
	DefaultChunkSize = 4096
	// DefaultChunkAge is how long the first pending byte may wait for its chunk.
	DefaultChunkAge = 50 * time.Millisecond
)

// ErrBatcherClosed is returned by Write after Close.
var ErrBatcherClosed = zerr.New("output batcher is closed")

// OutputBatcher groups a task's output into chunks for the renderer.
// A chunk is emitted once DefaultChunkSize bytes are pending or the oldest
// pending byte reaches the chunk age. Chunks end at a newline while a complete
// line is pending, so the log pane never shows half a line followed by the rest.
type OutputBatcher struct {
	chunkSize int
	chunkAge  time.Duration
	emit      func([]byte)

	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	closed  bool
}

// NewOutputBatcher returns a batcher calling emit with each chunk, in write order.
// Zero or negative limits select the defaults. emit runs with the batcher locked
// and must not block.
func NewOutputBatcher(chunkSize int, chunkAge time.Duration, emit func([]byte)) *OutputBatcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkAge <= 0 {
		chunkAge = DefaultChunkAge
	}
	return &OutputBatcher{
		chunkSize: chunkSize,
		chunkAge:  chunkAge,
		emit:      emit,
	}
}

// Write appends p to the pending output.
func (b *OutputBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBatcherClosed
	}

	b.pending = append(b.pending, p...)
	if len(b.pending) >= b.chunkSize {
		b.emitLocked(false)
	}
	b.armLocked()
	return len(p), nil
}

// Flush emits everything pending, including a trailing partial line.
func (b *OutputBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.emitLocked(true)
	}
}

// Close emits what is pending and rejects later writes.
func (b *OutputBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.emitLocked(true)
	return nil
}

// armLocked starts the age timer when output is pending and none is running.
func (b *OutputBatcher) armLocked() {
	if b.timer == nil && len(b.pending) > 0 {
		b.timer = time.AfterFunc(b.chunkAge, b.expire)
	}
}

func (b *OutputBatcher) expire() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.timer = nil
	if b.closed {
		return
	}
	b.emitLocked(false)
	b.armLocked()
}

// emitLocked hands pending output to emit. Unless all is set, a trailing
// partial line stays pending when at least one complete line precedes it.
func (b *OutputBatcher) emitLocked(all bool) {
	if len(b.pending) == 0 {
		return
	}

	cut := len(b.pending)
	if !all {
		if i := bytes.LastIndexByte(b.pending, '\n'); i >= 0 {
			cut = i + 1
		}
	}

	chunk := bytes.Clone(b.pending[:cut])
	b.pending = append(b.pending[:0], b.pending[cut:]...)
	if b.emit != nil {
		b.emit(chunk)
	}
}
