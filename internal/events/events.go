// Package events provides a JSONL audit stream for migration application.
// Each applied file, halt, and rebuild is recorded as a structured JSON
// event, keeping taxonomy builds auditable and replayable.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of audit event.
const (
	KindFileStart   = "file_start"
	KindFileApplied = "file_applied"
	KindHalt        = "halt"
	KindRebuild     = "rebuild"
	KindExport      = "export"
)

// Event represents a single audit record. Each event carries a timestamp,
// a kind tag, and optional context along with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	File      string    `json:"file,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes audit events to a JSONL file. It is safe for concurrent
// use. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	err  error // first write failure, sticky
}

// NewEmitter creates an Emitter appending JSONL events to the file at path.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("events: open %s: %w", path, err)
	}
	return &Emitter{file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes a single event, stamping the current time if unset. Calling
// Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		err = fmt.Errorf("events: encode: %w", err)
		if e.err == nil {
			e.err = err
		}
		return err
	}
	return nil
}

// Err returns the first write failure seen by Emit, or nil. Callers that
// fire events without checking each Emit can surface dropped audit records
// once at the end of a run. A nil Emitter reports nil.
func (e *Emitter) Err() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Close closes the underlying file. Calling Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("events: close: %w", err)
	}
	return nil
}
