package main

import (
	"flag"
	"log"
	"strings"

	"tradeflow/internal/feed"
	"tradeflow/internal/ops"
)

func main() {
	outDir := flag.String("out", "data", "Output directory for the feed files")
	seed := flag.Uint64("seed", 1, "Random seed")
	bondList := flag.String("bonds", "", "Comma separated bond ids (default: configured instruments)")
	configPath := flag.String("config", "", "Path to JSON config")
	prices := flag.Int("prices", 1000, "Price rows per bond")
	marketData := flag.Int("marketdata", 1000, "Market data rows per bond (even)")
	trades := flag.Int("trades", 10, "Trade rows per bond")
	inquiries := flag.Int("inquiries", 10, "Inquiry rows per bond")
	flag.Parse()

	if *prices < 0 || *marketData < 0 || *trades < 0 || *inquiries < 0 {
		log.Fatalf("row counts must be >= 0")
	}

	bonds, err := resolveBonds(*bondList, *configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	gen := feed.NewGenerator(feed.GenerateConfig{
		Bonds:      bonds,
		Seed:       *seed,
		Prices:     *prices,
		MarketData: *marketData,
		Trades:     *trades,
		Inquiries:  *inquiries,
	})
	if err := gen.Generate(*outDir); err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	log.Printf("feeds written dir=%s bonds=%d seed=%d", *outDir, len(bonds), *seed)
}

func resolveBonds(list, configPath string) ([]string, error) {
	if list != "" {
		var out []string
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
		return out, nil
	}

	loaded := ops.Default()
	if configPath != "" {
		var err error
		if loaded, err = ops.Load(configPath); err != nil {
			return nil, err
		}
	}
	out := make([]string, 0, loaded.Registry.BondCount())
	for i := 0; i < loaded.Registry.BondCount(); i++ {
		bond, _ := loaded.Registry.BondAt(i)
		out = append(out, bond.ID)
	}
	return out, nil
}
