package recorder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// PlaybackConfig controls journal playback.
type PlaybackConfig struct {
	Dir             string
	FilePrefix      string
	Speed           float64
	Types           []schema.EventType
	DisableChecksum bool
	MaxPayloadSize  int
}

// Clock allows deterministic pacing in tests.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Playback replays journal segments in file-name order. A positive Speed
// paces records by their event timestamps; zero replays as fast as possible.
type Playback struct {
	cfg    PlaybackConfig
	clock  Clock
	filter map[schema.EventType]struct{}
}

// NewPlayback validates cfg and creates a playback engine.
func NewPlayback(cfg PlaybackConfig) (*Playback, error) {
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = defaultFilePrefix
	}
	if cfg.Dir == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "playback dir is empty")
	}
	if cfg.Speed < 0 || cfg.MaxPayloadSize < 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "playback speed and max payload must be >= 0")
	}

	p := &Playback{cfg: cfg, clock: realClock{}}
	if len(cfg.Types) > 0 {
		p.filter = make(map[schema.EventType]struct{}, len(cfg.Types))
		for _, t := range cfg.Types {
			p.filter[t] = struct{}{}
		}
	}
	return p, nil
}

// WithClock swaps the clock implementation.
func (p *Playback) WithClock(clock Clock) *Playback {
	if clock != nil {
		p.clock = clock
	}
	return p
}

// Run replays every matching entry through handler and stops at the first
// handler error.
func (p *Playback) Run(ctx context.Context, handler func(Entry) error) error {
	if handler == nil {
		return errors.Wrap(exception.ErrNilInstance, "playback handler")
	}
	files, err := p.segments()
	if err != nil {
		return err
	}

	var prevTS int64
	for _, path := range files {
		if err := p.playFile(ctx, path, handler, &prevTS); err != nil {
			return err
		}
	}
	return nil
}

func (p *Playback) segments() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Dir)
	if err != nil {
		return nil, err
	}
	prefix := p.cfg.FilePrefix + "-"
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, segmentSuffix) {
			continue
		}
		files = append(files, filepath.Join(p.cfg.Dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func (p *Playback) playFile(ctx context.Context, path string, handler func(Entry) error, prevTS *int64) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := NewReader(file, ReaderOptions{
		DisableChecksum: p.cfg.DisableChecksum,
		MaxPayloadSize:  p.cfg.MaxPayloadSize,
	})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := reader.NextEntry()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read segment").With("path", path)
		}
		if p.filter != nil {
			if _, ok := p.filter[entry.Header.Type]; !ok {
				continue
			}
		}

		if err := p.pace(ctx, entry.Header.TsEvent, prevTS); err != nil {
			return err
		}
		if err := handler(entry); err != nil {
			return err
		}
	}
}

func (p *Playback) pace(ctx context.Context, ts int64, prevTS *int64) error {
	if p.cfg.Speed <= 0 || ts <= 0 {
		return nil
	}
	if *prevTS > 0 && ts > *prevTS {
		sleep := time.Duration(float64(ts-*prevTS) / p.cfg.Speed)
		if err := p.clock.Sleep(ctx, sleep); err != nil {
			return err
		}
	}
	*prevTS = ts
	return nil
}
