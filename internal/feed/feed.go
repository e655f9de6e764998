package feed

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// Stats counts the rows a connector has seen.
type Stats struct {
	Rows     uint64
	Accepted uint64
	Skipped  uint64
}

// BondLookup resolves bond reference data by id.
type BondLookup interface {
	Bond(id string) (schema.Bond, bool)
}

// Connector turns rows of one inbound feed into stage messages.
type Connector interface {
	Name() string
	HandleRow(fields []string) error
}

// Run reads comma separated rows from r until EOF, ctx is done or the process
// receives a shutdown signal. Malformed rows are logged, counted and skipped.
func Run(ctx context.Context, r io.Reader, c Connector) (Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.ReuseRecord = true

	shutdown := sys.Shutdown()
	var stats Stats
	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-shutdown:
			logs.Infof("%s feed stopped by shutdown after %d rows", c.Name(), stats.Rows)
			return stats, nil
		default:
		}

		fields, err := reader.Read()
		if err == io.EOF {
			return stats, nil
		}
		stats.Rows++

		if err == nil {
			err = c.HandleRow(fields)
		}
		if err != nil {
			stats.Skipped++
			logs.Errorf("%s feed skip row %d, err: %+v", c.Name(), stats.Rows, err)
			continue
		}
		stats.Accepted++
	}
}

// RunFile opens path and runs c over it.
func RunFile(ctx context.Context, path string, c Connector) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.Wrap(err, "open feed").With("path", path)
	}
	defer file.Close()
	return Run(ctx, file, c)
}

func checkFields(fields []string, want int) error {
	if len(fields) != want {
		return errors.Wrapf(exception.ErrFieldCount, "want %d, got %d", want, len(fields))
	}
	return nil
}

func lookupBond(bonds BondLookup, id string) (schema.Bond, error) {
	bond, ok := bonds.Bond(strings.TrimSpace(id))
	if !ok {
		return schema.Bond{}, errors.Wrap(exception.ErrUnknownInstrument, "lookup bond").With("bond", id)
	}
	return bond, nil
}

func parsePrice(text string) (float64, error) {
	p, err := codec.DecodePrice(text)
	if err != nil {
		return 0, errors.Wrap(err, "decode price").With("text", text)
	}
	return p, nil
}

func parseQuantity(text string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || q < 0 {
		return 0, errors.Wrap(exception.ErrMalformedRecord, "parse quantity").With("text", text)
	}
	return q, nil
}
