package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"tradeflow/internal/recorder"
	"tradeflow/internal/schema"
)

func main() {
	dir := flag.String("dir", "output/journal", "Journal directory")
	prefix := flag.String("prefix", "", "Journal file prefix (default: journal)")
	speed := flag.Float64("speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	types := flag.String("types", "", "Comma separated stages to print, e.g. position,risk (default: all)")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	maxPayload := flag.Int("max-payload", 0, "Max payload size in bytes (0=unlimited)")
	summary := flag.Bool("summary", false, "Print only per-stage counts")
	flag.Parse()

	filter, err := parseTypes(*types)
	if err != nil {
		log.Fatalf("invalid types: %v", err)
	}

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:             *dir,
		FilePrefix:      *prefix,
		Speed:           *speed,
		Types:           filter,
		DisableChecksum: *noChecksum,
		MaxPayloadSize:  *maxPayload,
	})
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	counts := make(map[schema.EventType]int)
	var index int
	err = pb.Run(context.Background(), func(entry recorder.Entry) error {
		index++
		counts[entry.Header.Type]++
		if *summary {
			return nil
		}
		fmt.Printf("%06d seq=%d stage=%s ts=%s %s\n",
			index, entry.Header.Seq, entry.Header.Type, entry.Header.Time().Format("2006-01-02 15:04:05.000"), strings.Join(entry.Fields, ","))
		return nil
	})
	if err != nil {
		log.Fatalf("playback run failed: %v", err)
	}

	for t := schema.EventUnknown; t <= schema.EventAlgoExecution; t++ {
		if n := counts[t]; n > 0 {
			fmt.Printf("stage=%s records=%d\n", t, n)
		}
	}
}

func parseTypes(text string) ([]schema.EventType, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var out []schema.EventType
	for _, name := range strings.Split(text, ",") {
		t, ok := schema.ParseEventType(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown stage %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}
