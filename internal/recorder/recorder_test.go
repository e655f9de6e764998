package recorder

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

type sleepRecorder struct {
	sleeps []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return nil
}

func writeJournal(t *testing.T, dir string, records func(w *Writer)) {
	t.Helper()
	w, err := NewWriter(Config{Dir: dir, QueueSize: 64})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	records(w)
	require.NoError(t, w.Close())
}

func TestRecordRoundTrip(t *testing.T) {
	header := schema.NewHeader(schema.EventPosition, 42, 1_700_000_000_000_000_000)
	payload := codec.AppendFields(nil, []string{"9128283H1", "TRSY1", "10"})

	buf := make([]byte, recordHeaderSize)
	encodeHeader(buf, header, len(payload))
	var data bytes.Buffer
	data.Write(buf)
	data.Write(payload)
	sum := checksum(buf, payload)
	data.Write([]byte{byte(sum), byte(sum >> 8), byte(sum >> 16), byte(sum >> 24)})

	r := NewReader(&data, ReaderOptions{})
	entry, err := r.NextEntry()
	require.NoError(t, err)
	assert.Equal(t, header, entry.Header)
	assert.Equal(t, []string{"9128283H1", "TRSY1", "10"}, entry.Fields)

	_, err = r.NextEntry()
	assert.Equal(t, io.EOF, err)
}

func TestReaderDetectsCorruption(t *testing.T) {
	header := schema.NewHeader(schema.EventRisk, 1, 1)
	payload := codec.AppendFields(nil, []string{"x"})
	buf := make([]byte, recordHeaderSize)
	encodeHeader(buf, header, len(payload))

	var data bytes.Buffer
	data.Write(buf)
	data.Write(payload)
	data.Write([]byte{0, 0, 0, 0})

	_, _, err := NewReader(bytes.NewReader(data.Bytes()), ReaderOptions{}).Next()
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, _, err = NewReader(bytes.NewReader(data.Bytes()), ReaderOptions{DisableChecksum: true}).Next()
	assert.NoError(t, err)

	bad := append([]byte(nil), data.Bytes()...)
	bad[0] = 'X'
	_, _, err = NewReader(bytes.NewReader(bad), ReaderOptions{}).Next()
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, _, err = NewReader(bytes.NewReader(data.Bytes()), ReaderOptions{MaxPayloadSize: 1}).Next()
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestWriterPlaybackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1_700_000_000, 0)
	writeJournal(t, dir, func(w *Writer) {
		require.NoError(t, w.AppendFields(schema.EventPosition, base, []string{"A", "TRSY1", "5"}))
		require.NoError(t, w.AppendFields(schema.EventRisk, base.Add(time.Second), []string{"A", "0.02", "5"}))
		require.NoError(t, w.AppendFields(schema.EventPosition, base.Add(3*time.Second), []string{"A", "TRSY1", "7"}))
	})

	pb, err := NewPlayback(PlaybackConfig{Dir: dir})
	require.NoError(t, err)

	var got []Entry
	require.NoError(t, pb.Run(context.Background(), func(e Entry) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].Header.Seq)
	assert.Equal(t, schema.EventRisk, got[1].Header.Type)
	assert.Equal(t, []string{"A", "TRSY1", "7"}, got[2].Fields)
	assert.Equal(t, schema.SchemaVersion, got[2].Header.Version)

	clock := &sleepRecorder{}
	filtered, err := NewPlayback(PlaybackConfig{Dir: dir, Speed: 2, Types: []schema.EventType{schema.EventPosition}})
	require.NoError(t, err)
	filtered.WithClock(clock)

	got = got[:0]
	require.NoError(t, filtered.Run(context.Background(), func(e Entry) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 2)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clock.sleeps)
}

func TestWriterLifecycle(t *testing.T) {
	w, err := NewWriter(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.ErrorIs(t, w.TryAppend(schema.EventHeader{}, nil), ErrNotStarted)
	require.NoError(t, w.Start(context.Background()))
	assert.ErrorIs(t, w.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.TryAppend(schema.EventHeader{}, nil), ErrClosed)
}

func TestWriterRotatesSegments(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Config{Dir: dir, SegmentMaxBytes: 64})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	for i := 0; i < 3; i++ {
		require.NoError(t, w.AppendFields(schema.EventInquiry, time.Now(), []string{"Q", "payload"}))
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, ".wal", filepath.Ext(e.Name()))
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig("x").Validate())
	assert.ErrorIs(t, Config{}.withDefaults().Validate(), exception.ErrInvalidArgument)

	_, err := NewPlayback(PlaybackConfig{})
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)
}
