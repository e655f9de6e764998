package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	httpapi "tradeflow/internal/interfaces/http"
	"tradeflow/internal/obs"
	"tradeflow/internal/ops"
	"tradeflow/internal/pipeline"
	"tradeflow/internal/state"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (default: built-in treasury set)")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (default: <history-dir>/positions.json)")
	recoverEnabled := flag.Bool("recover", false, "Recover positions from snapshot + journal before replay")
	serve := flag.Bool("serve", false, "Keep serving the read API after the feeds finish")
	flag.Parse()

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if loaded.Profiling.Address != "" {
		profiler, err := startProfiler(loaded.Profiling)
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	snapshotOut := *snapshotPath
	if snapshotOut == "" {
		snapshotOut = filepath.Join(loaded.History.Dir, "positions.json")
	}
	if err := run(context.Background(), loaded, snapshotOut, *recoverEnabled, *serve); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

func startProfiler(cfg ops.ProfilingConfig) (*pyroscope.Profiler, error) {
	name := cfg.ApplicationName
	if name == "" {
		name = "tradeflow"
	}
	return pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.Address,
		Logger:          profileLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}

// profileLogger routes profiler output to the library logger and drops debug lines.
type profileLogger struct{}

func (profileLogger) Infof(format string, args ...interface{})  { logs.Infof(format, args...) }
func (profileLogger) Debugf(string, ...interface{})             {}
func (profileLogger) Errorf(format string, args ...interface{}) { logs.Errorf(format, args...) }

func run(ctx context.Context, loaded ops.Loaded, snapshotPath string, recoverEnabled, serve bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink, err := pipeline.OpenSinks(ctx, loaded.History)
	if err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	p, err := pipeline.New(pipeline.Options{
		Config:  loaded,
		Sink:    sink,
		Metrics: metrics,
	})
	if err != nil {
		if sink != nil {
			_ = sink.Close()
		}
		return err
	}

	if recoverEnabled {
		recoverSnapshot := snapshotPath
		if _, err := os.Stat(recoverSnapshot); err != nil {
			recoverSnapshot = ""
		}
		result, err := p.Recover(ctx, state.RecoverConfig{
			JournalDir:   loaded.History.JournalDir,
			SnapshotPath: recoverSnapshot,
		})
		if err != nil {
			_ = p.Close()
			return err
		}
		log.Printf("recovered positions=%d replayed=%d last_seq=%d", p.Positions.Len(), result.Replayed, result.LastSeq)
	}

	start := time.Now()
	results, feedErr := p.RunFeeds(ctx, loaded.Feeds)
	for _, r := range results {
		log.Printf("feed=%s rows=%d accepted=%d skipped=%d", r.Name, r.Stats.Rows, r.Stats.Accepted, r.Stats.Skipped)
	}
	log.Printf("replay finished in %s, gui emitted=%d dropped=%d", time.Since(start), p.GUI.Emitted(), p.GUI.Dropped())

	if err := p.Close(); err != nil {
		log.Printf("history close failed: %v", err)
	}
	if feedErr != nil {
		return feedErr
	}

	snap := p.Positions.SnapshotWithMeta(0, time.Now().UTC().UnixNano())
	if err := state.WriteSnapshot(snapshotPath, snap); err != nil {
		return err
	}
	log.Printf("snapshot written path=%s positions=%d", snapshotPath, len(snap.Positions))

	for _, name := range []string{"FrontEnd", "Belly", "LongEnd"} {
		if bucket, err := p.Risk.BucketedRiskByName(name); err == nil {
			log.Printf("bucket=%s pv01=%.4f", name, bucket.PV01)
		}
	}

	if loaded.HTTPAddr == "" || !serve {
		return nil
	}
	return serveHTTP(loaded.HTTPAddr, p, metrics)
}

// serveHTTP exposes the final pipeline state until a shutdown signal arrives.
func serveHTTP(addr string, p *pipeline.Pipeline, metrics *obs.Metrics) error {
	handler := httpapi.NewHandler(httpapi.Deps{
		Prices:    p.Pricing,
		Books:     p.MarketData,
		Positions: p.Positions,
		Risk:      p.Risk,
		Inquiries: p.Inquiries,
		Metrics:   promhttp.HandlerFor(obs.NewRegistry(metrics), promhttp.HandlerOpts{}),
	})
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http listening addr=%s", addr)
		errCh <- server.ListenAndServe()
	}()

	shutdown := sys.Shutdown()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("http shutting down")
	return server.Shutdown(ctx)
}
