package history

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
)

// TimestampLayout is the timestamp format of text sink lines.
const TimestampLayout = "2006-01-02 15:04:05.000"

var fileNames = map[schema.EventType]string{
	schema.EventPriceStream: "streaming.txt",
	schema.EventExecution:   "executions.txt",
	schema.EventPosition:    "positions.txt",
	schema.EventRisk:        "risk.txt",
	schema.EventInquiry:     "allinquiries.txt",
}

// FileName returns the text file a stage is written to.
func FileName(t schema.EventType) string {
	if name, ok := fileNames[t]; ok {
		return name
	}
	return t.String() + ".txt"
}

// FileSink appends one comma separated line per record to a text file per stage.
type FileSink struct {
	dir   string
	mu    sync.Mutex
	files map[schema.EventType]*fileHandle
}

type fileHandle struct {
	file *os.File
	buf  *bufio.Writer
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create history dir").With("dir", dir)
	}
	return &FileSink{dir: dir, files: make(map[schema.EventType]*fileHandle)}, nil
}

// Write implements Sink. Lines are flushed on every write.
func (s *FileSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.handle(rec.Type)
	if err != nil {
		return err
	}
	if _, err := h.buf.WriteString(FormatLine(rec)); err != nil {
		return err
	}
	if err := h.buf.WriteByte('\n'); err != nil {
		return err
	}
	return h.buf.Flush()
}

func (s *FileSink) handle(t schema.EventType) (*fileHandle, error) {
	if h, ok := s.files[t]; ok {
		return h, nil
	}
	path := filepath.Join(s.dir, FileName(t))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open history file").With("path", path)
	}
	h := &fileHandle{file: file, buf: bufio.NewWriter(file)}
	s.files[t] = h
	return h, nil
}

// Close implements Sink.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for t, h := range s.files {
		if err := h.buf.Flush(); err != nil && first == nil {
			first = err
		}
		if err := h.file.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.files, t)
	}
	return first
}

// FormatLine renders a record as "timestamp,field1,field2,...".
func FormatLine(rec Record) string {
	var b strings.Builder
	b.WriteString(rec.Timestamp.Format(TimestampLayout))
	for _, f := range rec.Fields {
		b.WriteByte(',')
		b.WriteString(f)
	}
	return b.String()
}
