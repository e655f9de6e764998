package execution

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const orderIDLength = 12

// IDGenerator issues order ids.
type IDGenerator interface {
	NextID() string
}

// IDFunc adapts a function into an IDGenerator.
type IDFunc func() string

func (f IDFunc) NextID() string { return f() }

// UUIDGenerator issues 12-character upper-case ids cut from random UUIDs.
type UUIDGenerator struct{}

// NextID implements IDGenerator.
func (UUIDGenerator) NextID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:orderIDLength])
}

// SequenceGenerator issues monotonically increasing ids with a fixed prefix.
// It is used for deterministic replays.
type SequenceGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSequenceGenerator returns a generator whose first id is seed+1.
func NewSequenceGenerator(prefix string, seed uint64) *SequenceGenerator {
	g := &SequenceGenerator{prefix: prefix}
	g.next.Store(seed)
	return g
}

// NextID implements IDGenerator.
func (g *SequenceGenerator) NextID() string {
	return g.prefix + strconv.FormatUint(g.next.Add(1), 10)
}
