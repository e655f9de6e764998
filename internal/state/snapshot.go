package state

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// Snapshot captures per-book positions at a point in time.
type Snapshot struct {
	Timestamp   int64           `json:"timestamp"`
	LastSeq     uint64          `json:"lastSeq"`
	LastEventTs int64           `json:"lastEventTs"`
	Positions   []PositionEntry `json:"positions"`
}

// PositionEntry is the quantity of one bond in one book.
type PositionEntry struct {
	Bond string `json:"bond"`
	Book string `json:"book"`
	Qty  int64  `json:"qty"`
}

// BondLookup resolves bond reference data by id.
type BondLookup interface {
	Bond(id string) (schema.Bond, bool)
}

// Snapshot builds a snapshot from current positions.
func (s *PositionService) Snapshot() Snapshot {
	return s.SnapshotWithMeta(0, 0)
}

// SnapshotWithMeta builds a snapshot with journal metadata.
func (s *PositionService) SnapshotWithMeta(lastSeq uint64, lastEventTs int64) Snapshot {
	entries := make([]PositionEntry, 0, s.Len())
	s.Range(func(id string, p schema.Position) bool {
		for _, book := range p.Books() {
			entries = append(entries, PositionEntry{Bond: id, Book: book, Qty: p.Quantity(book)})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Bond != entries[j].Bond {
			return entries[i].Bond < entries[j].Bond
		}
		return entries[i].Book < entries[j].Book
	})
	return Snapshot{
		Timestamp:   time.Now().UTC().UnixNano(),
		LastSeq:     lastSeq,
		LastEventTs: lastEventTs,
		Positions:   entries,
	}
}

// ApplySnapshot stores the positions of snapshot without notifying listeners.
// Positions for bonds absent from the snapshot are kept.
func (s *PositionService) ApplySnapshot(snapshot Snapshot, bonds BondLookup) error {
	grouped := make(map[string]map[string]int64)
	for _, entry := range snapshot.Positions {
		if grouped[entry.Bond] == nil {
			grouped[entry.Bond] = make(map[string]int64)
		}
		grouped[entry.Bond][entry.Book] += entry.Qty
	}
	for id, books := range grouped {
		bond, ok := bonds.Bond(id)
		if !ok {
			return errors.Wrap(exception.ErrUnknownInstrument, "apply snapshot").With("bond", id)
		}
		s.Put(schema.NewPositionFromBooks(bond, books))
	}
	return nil
}

// WriteSnapshot writes a snapshot to disk as JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := sonic.ConfigStd.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// CompareSnapshots checks if two snapshots hold the same positions.
func CompareSnapshots(expected, actual Snapshot) error {
	if len(expected.Positions) != len(actual.Positions) {
		return errors.Errorf("snapshot length mismatch: expected=%d actual=%d", len(expected.Positions), len(actual.Positions))
	}
	type key struct{ bond, book string }
	expectedMap := make(map[key]int64, len(expected.Positions))
	for _, entry := range expected.Positions {
		expectedMap[key{entry.Bond, entry.Book}] = entry.Qty
	}
	for _, entry := range actual.Positions {
		want, ok := expectedMap[key{entry.Bond, entry.Book}]
		if !ok {
			return errors.Errorf("snapshot missing position: bond=%s book=%s", entry.Bond, entry.Book)
		}
		if want != entry.Qty {
			return errors.Errorf("snapshot qty mismatch: bond=%s book=%s expected=%d actual=%d", entry.Bond, entry.Book, want, entry.Qty)
		}
	}
	return nil
}
