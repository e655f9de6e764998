package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"

	"tradeflow/internal/chaos"
)

func main() {
	input := flag.String("input", "data/trades.txt", "Input feed file")
	output := flag.String("output", "data/trades_chaos.txt", "Output feed file")
	seed := flag.Uint64("seed", 0, "RNG seed (0=now)")
	dropRate := flag.Float64("drop-rate", 0, "Drop probability [0-1]")
	dupRate := flag.Float64("dup-rate", 0, "Duplicate probability [0-1]")
	reorderWindow := flag.Int("reorder-window", 1, "Reorder window (>=1)")
	flag.Parse()

	engine, err := chaos.NewEngine[[]string](chaos.Config{
		Seed:          *seed,
		DropRate:      *dropRate,
		DuplicateRate: *dupRate,
		ReorderWindow: *reorderWindow,
	})
	if err != nil {
		log.Fatalf("chaos config invalid: %v", err)
	}

	in, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input failed: %v", err)
	}
	defer in.Close()

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output failed: %v", err)
	}

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	writer := csv.NewWriter(out)

	var read, written int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("read input failed: %v", err)
		}
		read++
		for _, r := range engine.Process(row) {
			if err := writer.Write(r); err != nil {
				log.Fatalf("write output failed: %v", err)
			}
			written++
		}
	}
	for _, r := range engine.Flush() {
		if err := writer.Write(r); err != nil {
			log.Fatalf("write output failed: %v", err)
		}
		written++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("flush output failed: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("close output failed: %v", err)
	}
	log.Printf("chaos done read=%d written=%d", read, written)
}
