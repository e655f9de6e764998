package state

import (
	"context"
	"strconv"

	"github.com/yanun0323/errors"

	"tradeflow/internal/recorder"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// RecoverConfig controls snapshot plus journal recovery.
type RecoverConfig struct {
	JournalDir      string
	SnapshotPath    string
	FilePrefix      string
	DisableChecksum bool
	MaxPayloadSize  int
}

// RecoverResult describes what recovery applied.
type RecoverResult struct {
	Replayed    int
	LastSeq     uint64
	LastEventTs int64
}

// Recover loads the snapshot, if any, and replays journaled position records
// newer than it into s. Every position record is a full per-book snapshot of
// one bond, so the latest record for a bond wins. Listeners are not notified.
func (s *PositionService) Recover(ctx context.Context, cfg RecoverConfig, bonds BondLookup) (RecoverResult, error) {
	if cfg.JournalDir == "" {
		return RecoverResult{}, errors.Wrap(exception.ErrInvalidArgument, "journal dir is empty")
	}

	var result RecoverResult
	if cfg.SnapshotPath != "" {
		snapshot, err := ReadSnapshot(cfg.SnapshotPath)
		if err != nil {
			return RecoverResult{}, errors.Wrap(err, "read snapshot").With("path", cfg.SnapshotPath)
		}
		if err := s.ApplySnapshot(snapshot, bonds); err != nil {
			return RecoverResult{}, err
		}
		result.LastSeq = snapshot.LastSeq
		result.LastEventTs = snapshot.LastEventTs
	}

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:             cfg.JournalDir,
		FilePrefix:      cfg.FilePrefix,
		Types:           []schema.EventType{schema.EventPosition},
		DisableChecksum: cfg.DisableChecksum,
		MaxPayloadSize:  cfg.MaxPayloadSize,
	})
	if err != nil {
		return RecoverResult{}, err
	}

	cutoff := result.LastEventTs
	err = pb.Run(ctx, func(entry recorder.Entry) error {
		if entry.Header.TsEvent <= cutoff {
			return nil
		}
		position, err := decodePosition(entry.Fields, bonds)
		if err != nil {
			return errors.Wrap(err, "replay position").With("seq", entry.Header.Seq)
		}
		s.Put(position)
		result.Replayed++
		if entry.Header.Seq > result.LastSeq {
			result.LastSeq = entry.Header.Seq
		}
		if entry.Header.TsEvent > result.LastEventTs {
			result.LastEventTs = entry.Header.TsEvent
		}
		return nil
	})
	if err != nil {
		return RecoverResult{}, err
	}
	return result, nil
}

// decodePosition parses the record layout bond,book,qty,book,qty...
func decodePosition(fields []string, bonds BondLookup) (schema.Position, error) {
	if len(fields) == 0 || len(fields)%2 == 0 {
		return schema.Position{}, errors.Wrap(recorder.ErrMalformedPayload, "position fields").With("count", len(fields))
	}
	bond, ok := bonds.Bond(fields[0])
	if !ok {
		return schema.Position{}, errors.Wrap(exception.ErrUnknownInstrument, "position bond").With("bond", fields[0])
	}
	books := make(map[string]int64, len(fields)/2)
	for i := 1; i < len(fields); i += 2 {
		qty, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return schema.Position{}, errors.Wrap(recorder.ErrMalformedPayload, "position quantity").With("value", fields[i+1])
		}
		books[fields[i]] = qty
	}
	return schema.NewPositionFromBooks(bond, books), nil
}
