package recorder

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
)

var (
	ErrQueueFull       = errors.New("journal queue full")
	ErrClosed          = errors.New("journal writer closed")
	ErrNotStarted      = errors.New("journal writer not started")
	ErrAlreadyStarted  = errors.New("journal writer already started")
	ErrPayloadTooLarge = errors.New("journal payload too large")
)

const maxPayloadLen = uint64(^uint32(0))

// Writer appends stage records to rotating journal segments. Appends are
// queued and written by a single goroutine started with Start.
type Writer struct {
	cfg Config
	ch  chan pending
	wg  sync.WaitGroup
	err atomic.Value
	seq atomic.Uint64

	started atomic.Bool
	closed  atomic.Bool
}

type pending struct {
	header  schema.EventHeader
	payload []byte
}

// NewWriter creates a journal writer and ensures the target directory exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{cfg: cfg, ch: make(chan pending, cfg.QueueSize)}, nil
}

// Start runs the write loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Close stops accepting records, flushes the open segment and waits for the loop.
func (w *Writer) Close() error {
	if w.closed.CompareAndSwap(false, true) {
		close(w.ch)
	}
	w.wg.Wait()
	return w.Err()
}

// Err returns the first error observed by the write loop.
func (w *Writer) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// NextSeq returns the next journal sequence number, starting at 1.
func (w *Writer) NextSeq() uint64 {
	return w.seq.Add(1)
}

// AppendFields stamps a header for eventType and enqueues fields without blocking.
func (w *Writer) AppendFields(eventType schema.EventType, ts time.Time, fields []string) error {
	header := schema.NewHeader(eventType, w.NextSeq(), ts.UnixNano())
	return w.TryAppend(header, codec.AppendFields(nil, fields))
}

// TryAppend enqueues an encoded payload without blocking. The writer takes
// ownership of payload.
func (w *Writer) TryAppend(header schema.EventHeader, payload []byte) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if !w.started.Load() {
		return ErrNotStarted
	}
	if err := w.Err(); err != nil {
		return err
	}
	if uint64(len(payload)) > maxPayloadLen {
		return ErrPayloadTooLarge
	}
	if header.Version == 0 {
		header.Version = schema.SchemaVersion
	}

	select {
	case w.ch <- pending{header: header, payload: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Writer) run(ctx context.Context) {
	state := &segmentState{cfg: w.cfg, header: make([]byte, recordHeaderSize)}

	var flushC, syncC <-chan time.Time
	if w.cfg.FlushInterval > 0 {
		t := time.NewTicker(w.cfg.FlushInterval)
		defer t.Stop()
		flushC = t.C
	}
	if w.cfg.SyncInterval > 0 {
		t := time.NewTicker(w.cfg.SyncInterval)
		defer t.Stop()
		syncC = t.C
	}
	defer func() {
		w.setErr(state.close())
	}()

	for {
		var err error
		select {
		case <-ctx.Done():
			w.drain(state)
			return
		case req, ok := <-w.ch:
			if !ok {
				return
			}
			err = state.write(req)
		case <-flushC:
			err = state.flush()
		case <-syncC:
			err = state.sync()
		}
		if err != nil {
			w.setErr(err)
			return
		}
	}
}

func (w *Writer) drain(state *segmentState) {
	for {
		select {
		case req, ok := <-w.ch:
			if !ok {
				return
			}
			if err := state.write(req); err != nil {
				w.setErr(err)
				return
			}
		default:
			return
		}
	}
}

func (w *Writer) setErr(err error) {
	if err == nil || w.err.Load() != nil {
		return
	}
	w.err.Store(err)
}

// segmentState is owned by the write loop.
type segmentState struct {
	cfg    Config
	header []byte
	nextID uint64

	file     *os.File
	buf      *bufio.Writer
	size     int64
	openedAt time.Time
}

func (s *segmentState) write(req pending) error {
	now := time.Now().UTC()
	size := int64(recordHeaderSize + len(req.payload) + recordChecksumSize)
	if s.needsRotation(now, size) {
		if err := s.close(); err != nil {
			return err
		}
		if err := s.open(now); err != nil {
			return err
		}
	}

	encodeHeader(s.header, req.header, len(req.payload))
	var sum [recordChecksumSize]byte
	binary.LittleEndian.PutUint32(sum[:], checksum(s.header, req.payload))

	for _, part := range [][]byte{s.header, req.payload, sum[:]} {
		if _, err := s.buf.Write(part); err != nil {
			return err
		}
	}
	s.size += size
	return nil
}

func (s *segmentState) needsRotation(now time.Time, next int64) bool {
	if s.file == nil {
		return true
	}
	if s.size+next > s.cfg.SegmentMaxBytes {
		return true
	}
	return s.cfg.SegmentMaxDuration > 0 && now.Sub(s.openedAt) >= s.cfg.SegmentMaxDuration
}

func (s *segmentState) open(now time.Time) error {
	stamp := now.Format("20060102-150405")
	for {
		s.nextID++
		name := fmt.Sprintf("%s-%s-%06d%s", s.cfg.FilePrefix, stamp, s.nextID, segmentSuffix)
		file, err := os.OpenFile(filepath.Join(s.cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}
		s.file = file
		s.buf = bufio.NewWriterSize(file, s.cfg.BufferSize)
		s.size = 0
		s.openedAt = now
		return nil
	}
}

func (s *segmentState) flush() error {
	if s.file == nil {
		return nil
	}
	return s.buf.Flush()
}

func (s *segmentState) sync() error {
	if err := s.flush(); err != nil || s.file == nil {
		return err
	}
	return s.file.Sync()
}

func (s *segmentState) close() error {
	if s.file == nil {
		return nil
	}
	file, buf := s.file, s.buf
	s.file, s.buf = nil, nil
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
