package history

import (
	"context"

	"tradeflow/internal/recorder"
)

// JournalSink appends records to the binary journal.
type JournalSink struct {
	w *recorder.Writer
}

// NewJournalSink wraps a started journal writer. Close closes the writer.
func NewJournalSink(w *recorder.Writer) *JournalSink {
	return &JournalSink{w: w}
}

// Write implements Sink.
func (s *JournalSink) Write(_ context.Context, rec Record) error {
	return s.w.AppendFields(rec.Type, rec.Timestamp, rec.Fields)
}

// Close implements Sink.
func (s *JournalSink) Close() error {
	return s.w.Close()
}
