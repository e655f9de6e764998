package chaos

import (
	"tradeflow/internal/feed"
)

// Connector perturbs the rows of a feed before they reach the wrapped
// connector. Call Flush after the feed ends to release buffered rows.
type Connector struct {
	next   feed.Connector
	engine *Engine[[]string]
}

// NewConnector wraps next with a row chaos engine.
func NewConnector(next feed.Connector, cfg Config) (*Connector, error) {
	engine, err := NewEngine[[]string](cfg)
	if err != nil {
		return nil, err
	}
	return &Connector{next: next, engine: engine}, nil
}

// Name implements feed.Connector.
func (c *Connector) Name() string {
	return c.next.Name() + "+chaos"
}

// HandleRow implements feed.Connector. Fields are copied since the feed
// reader reuses its row buffer.
func (c *Connector) HandleRow(fields []string) error {
	row := append([]string(nil), fields...)
	return c.forward(c.engine.Process(row))
}

// Flush forwards the rows still held in the reorder window.
func (c *Connector) Flush() error {
	return c.forward(c.engine.Flush())
}

func (c *Connector) forward(rows [][]string) error {
	for _, row := range rows {
		if err := c.next.HandleRow(row); err != nil {
			return err
		}
	}
	return nil
}
