package pipeline

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"tradeflow/internal/history"
	"tradeflow/internal/ops"
	"tradeflow/internal/recorder"
	"tradeflow/pkg/conn"
)

// OpenSinks connects every configured historical sink and joins them. When
// cfg.Async is set the joined sink is drained by a background queue. A nil
// sink is returned when no kind is configured.
func OpenSinks(ctx context.Context, cfg ops.HistoryConfig) (history.Sink, error) {
	var sinks history.MultiSink
	fail := func(err error) (history.Sink, error) {
		if closeErr := sinks.Close(); closeErr != nil {
			logs.Errorf("close opened sinks, err: %+v", closeErr)
		}
		return nil, err
	}

	for _, kind := range cfg.Sinks {
		sink, err := openSink(ctx, kind, cfg)
		if err != nil {
			return fail(errors.Wrap(err, "open history sink").With("kind", kind))
		}
		sinks = append(sinks, sink)
		logs.Infof("history sink %s opened", kind)
	}

	switch {
	case len(sinks) == 0:
		return nil, nil
	case cfg.Async:
		return history.NewAsyncSink(ctx, sinks, cfg.QueueSize), nil
	default:
		return sinks, nil
	}
}

func openSink(ctx context.Context, kind string, cfg ops.HistoryConfig) (history.Sink, error) {
	switch kind {
	case ops.SinkFile:
		return history.NewFileSink(cfg.Dir)
	case ops.SinkJournal:
		w, err := recorder.NewWriter(recorder.DefaultConfig(cfg.JournalDir))
		if err != nil {
			return nil, err
		}
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
		return history.NewJournalSink(w), nil
	case ops.SinkPostgres:
		return history.NewPostgresSink(cfg.Postgres)
	case ops.SinkRedis:
		client, err := conn.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return history.NewRedisSink(client, cfg.StreamPrefix, cfg.StreamMaxLen), nil
	case ops.SinkKafka:
		w, err := conn.NewKafkaWriter(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return history.NewKafkaSink(w, cfg.TopicPrefix), nil
	default:
		return nil, errors.Errorf("unsupported history sink %q", kind)
	}
}
