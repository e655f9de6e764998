package chaos

import (
	"math/rand/v2"
	"time"

	"github.com/yanun0323/errors"

	"tradeflow/pkg/exception"
)

// Config controls chaos injection behavior.
type Config struct {
	Seed          uint64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.Wrap(exception.ErrInvalidArgument, "dropRate must be between 0 and 1")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return errors.Wrap(exception.ErrInvalidArgument, "duplicateRate must be between 0 and 1")
	}
	if c.ReorderWindow <= 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "reorderWindow must be >= 1")
	}
	return nil
}

// Engine drops, duplicates and reorders items within a bounded window.
type Engine[T any] struct {
	cfg     Config
	rng     *rand.Rand
	pending []T
}

// NewEngine creates a chaos engine. A zero seed uses the current time.
func NewEngine[T any](cfg Config) (*Engine[T], error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UTC().UnixNano())
	}
	return &Engine[T]{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1)),
	}, nil
}

// Process applies chaos to one item and returns the items to emit now.
func (e *Engine[T]) Process(item T) []T {
	if e == nil {
		return []T{item}
	}
	if e.shouldDrop() {
		return nil
	}
	if e.cfg.ReorderWindow <= 1 {
		return e.applyDuplicate(item)
	}
	e.pending = append(e.pending, item)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	return e.applyDuplicate(e.take())
}

// Flush returns the buffered items in random order.
func (e *Engine[T]) Flush() []T {
	if e == nil || len(e.pending) == 0 {
		return nil
	}
	out := make([]T, 0, len(e.pending))
	for len(e.pending) > 0 {
		out = append(out, e.applyDuplicate(e.take())...)
	}
	return out
}

// Pending returns the number of buffered items.
func (e *Engine[T]) Pending() int {
	if e == nil {
		return 0
	}
	return len(e.pending)
}

func (e *Engine[T]) take() T {
	idx := e.rng.IntN(len(e.pending))
	item := e.pending[idx]
	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
	return item
}

func (e *Engine[T]) shouldDrop() bool {
	return e.cfg.DropRate > 0 && e.rng.Float64() < e.cfg.DropRate
}

func (e *Engine[T]) applyDuplicate(item T) []T {
	out := []T{item}
	if e.cfg.DuplicateRate > 0 && e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, item)
	}
	return out
}
