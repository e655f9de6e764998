package feed

import (
	"encoding/csv"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yanun0323/errors"

	"tradeflow/internal/codec"
)

// Feed file names written by Generate.
const (
	PricesFile     = "prices.txt"
	MarketDataFile = "marketdata.txt"
	TradesFile     = "trades.txt"
	InquiriesFile  = "inquiries.txt"
)

const (
	tick       = 1.0 / 256
	lotSize    = 10_000_000
	priceFloor = 99.0
	priceRange = 2.0
)

var (
	tradeBooks     = []string{"TRSY1", "TRSY2", "TRSY3"}
	depthSpreads   = []float64{1.0 / 128, 2.0 / 128, 3.0 / 128, 4.0 / 128, 3.0 / 128, 2.0 / 128}
	streamSpreads  = []float64{1.0 / 128, 1.0 / 64}
	tradeSides     = []string{"BUY", "SELL"}
	marketDataSide = []string{"BID", "OFFER"}
)

// GenerateConfig sizes the generated feeds. Counts are rows per bond.
type GenerateConfig struct {
	Bonds      []string
	Seed       uint64
	Prices     int
	MarketData int
	Trades     int
	Inquiries  int
}

// Generator writes deterministic feed rows. Prices sit on the 1/256 grid
// between 99 and 101.
type Generator struct {
	cfg GenerateConfig
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded with cfg.Seed.
func NewGenerator(cfg GenerateConfig) *Generator {
	return &Generator{
		cfg: cfg,
		rnd: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Generate writes the four feed files into dir.
func (g *Generator) Generate(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create feed dir").With("dir", dir)
	}
	steps := []struct {
		name  string
		write func(io.Writer) error
	}{
		{PricesFile, g.WritePrices},
		{MarketDataFile, g.WriteMarketData},
		{TradesFile, g.WriteTrades},
		{InquiriesFile, g.WriteInquiries},
	}
	for _, step := range steps {
		if err := writeFile(filepath.Join(dir, step.name), step.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create feed file").With("path", path)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "write feed file").With("path", path)
	}
	return file.Close()
}

// WritePrices writes "bondId,bid,offer" rows with spreads alternating
// 1/128 and 1/64.
func (g *Generator) WritePrices(w io.Writer) error {
	out := csv.NewWriter(w)
	var i int
	for _, bond := range g.cfg.Bonds {
		for n := 0; n < g.cfg.Prices; n++ {
			bid := g.price()
			offer := bid + streamSpreads[i%len(streamSpreads)]
			i++
			if err := out.Write([]string{bond, codec.EncodePrice(bid), codec.EncodePrice(offer)}); err != nil {
				return err
			}
		}
	}
	out.Flush()
	return out.Error()
}

// WriteMarketData writes "bondId,price,quantity,side" rows, alternating bid
// and offer around a random mid with spreads cycling 1/128 to 4/128. Sizes
// step from one to five lots every two rows.
func (g *Generator) WriteMarketData(w io.Writer) error {
	out := csv.NewWriter(w)
	var row, quote int
	for _, bond := range g.cfg.Bonds {
		for n := 0; n < g.cfg.MarketData/2; n++ {
			mid := g.price()
			half := depthSpreads[quote%len(depthSpreads)] / 2
			quote++
			for k, price := range []float64{mid - half, mid + half} {
				size := int64(row/2%5+1) * lotSize
				row++
				rec := []string{bond, codec.EncodePrice(price), strconv.FormatInt(size, 10), marketDataSide[k]}
				if err := out.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	out.Flush()
	return out.Error()
}

// WriteTrades writes "bondId,tradeId,price,book,quantity,side" rows.
func (g *Generator) WriteTrades(w io.Writer) error {
	out := csv.NewWriter(w)
	var i int
	for _, bond := range g.cfg.Bonds {
		for n := 0; n < g.cfg.Trades; n++ {
			rec := []string{
				bond,
				g.id(),
				codec.EncodePrice(g.price()),
				tradeBooks[i%len(tradeBooks)],
				strconv.FormatInt(int64(i%5+1)*lotSize, 10),
				tradeSides[i%len(tradeSides)],
			}
			i++
			if err := out.Write(rec); err != nil {
				return err
			}
		}
	}
	out.Flush()
	return out.Error()
}

// WriteInquiries writes "inquiryId,bondId,side,quantity,price,RECEIVED" rows.
func (g *Generator) WriteInquiries(w io.Writer) error {
	out := csv.NewWriter(w)
	var i int
	for _, bond := range g.cfg.Bonds {
		for n := 0; n < g.cfg.Inquiries; n++ {
			rec := []string{
				g.id(),
				bond,
				tradeSides[i%len(tradeSides)],
				strconv.FormatInt(int64(i%5+1)*lotSize, 10),
				codec.EncodePrice(g.price()),
				"RECEIVED",
			}
			i++
			if err := out.Write(rec); err != nil {
				return err
			}
		}
	}
	out.Flush()
	return out.Error()
}

// price draws a price on the 1/256 grid in [99, 101).
func (g *Generator) price() float64 {
	ticks := g.rnd.IntN(int(priceRange / tick))
	return priceFloor + float64(ticks)*tick
}

func (g *Generator) id() string {
	return strconv.FormatUint(g.rnd.Uint64N(1e10), 10)
}
