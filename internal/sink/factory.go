package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"jobextract/internal/config"
	"jobextract/internal/domain"
	"jobextract/internal/metrics"
	"jobextract/internal/port"
)

// Deps carries what the sink factories may need. Only the fields used by
// the selected kinds must be set.
type Deps struct {
	Config  *config.Config
	Repo    port.JobPostingRepository
	Storage port.ObjectStorage
	Kafka   MessageWriter
	Console io.Writer
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Factory creates a RecordSink of one kind.
type Factory func(ctx context.Context, deps Deps) (port.RecordSink, error)

// registry of sink factories. Built-in kinds are registered below; others
// can be added via Register.
var factories = map[domain.SinkKind]Factory{
	domain.SinkConsole: func(_ context.Context, d Deps) (port.RecordSink, error) {
		return NewConsole(d.Console), nil
	},
	domain.SinkCSV: func(_ context.Context, d Deps) (port.RecordSink, error) {
		return NewCSVFile(d.Config.Sink.OutputDir)
	},
	domain.SinkXLSX: func(_ context.Context, d Deps) (port.RecordSink, error) {
		return NewXLSXFile(d.Config.Sink.OutputDir)
	},
	domain.SinkPostgres: func(_ context.Context, d Deps) (port.RecordSink, error) {
		if d.Repo == nil {
			return nil, errors.New("postgres sink requires a database connection")
		}
		return NewPostgres(d.Repo), nil
	},
	domain.SinkKafka: func(_ context.Context, d Deps) (port.RecordSink, error) {
		w := d.Kafka
		if w == nil {
			if len(d.Config.Kafka.Brokers) == 0 || d.Config.Kafka.Topic == "" {
				return nil, errors.New("kafka sink requires brokers and a topic")
			}
			w = NewKafkaWriter(d.Config.Kafka)
		}
		return NewKafka(w, d.Logger), nil
	},
	domain.SinkS3: func(_ context.Context, d Deps) (port.RecordSink, error) {
		if d.Storage == nil || d.Config.S3.Bucket == "" {
			return nil, errors.New("s3 sink requires a bucket")
		}
		return NewObjectStore(d.Storage, d.Config.S3.Bucket, d.Config.S3.OutputPrefix), nil
	},
}

// Register adds or replaces the factory for a sink kind.
func Register(kind domain.SinkKind, f Factory) {
	factories[kind] = f
}

// Build creates a Multi holding one sink per kind, in order. On error the
// sinks built so far are closed.
func Build(ctx context.Context, kinds []domain.SinkKind, deps Deps) (*Multi, error) {
	multi := NewMulti(deps.Metrics, deps.Logger)
	for _, kind := range kinds {
		factory, ok := factories[kind]
		if !ok {
			_ = multi.Close()
			return nil, fmt.Errorf("unknown sink kind: %s", kind)
		}
		s, err := factory(ctx, deps)
		if err != nil {
			_ = multi.Close()
			return nil, fmt.Errorf("building %s sink: %w", kind, err)
		}
		multi.Add(kind, s)
	}
	return multi, nil
}
