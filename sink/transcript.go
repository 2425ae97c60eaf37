// Package sink contains the transcript consumers fed by the router: the
// append-only text log and the optional structured archive.
package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"chat-relay/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// Transcript appends one timestamped line per delivered/logged event to an
// append-only text file:
//
//	[YYYY-MM-DD HH:MM:SS] alice: hello
//
// Writes are serialized by the sink's own mutex, so each line lands as a
// complete, non-interleaved record. The transcript is deliberately not
// ordered relative to fan-out delivery; log order and delivery order may
// differ under contention.
type Transcript struct {
	mu   sync.Mutex
	file *os.File
}

func NewTranscript(path string) (*Transcript, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return &Transcript{file: file}, nil
}

func (t *Transcript) Consume(_ context.Context, e domain.TranscriptEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.file, "[%s] %s\n", e.At.Format(timestampLayout), e.Line)
	return err
}

func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
