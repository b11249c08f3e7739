package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"jobextract/internal/config"
	"jobextract/internal/domain"
	"jobextract/internal/logger"
)

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes one JSON message per record, keyed by file_name so all
// postings of a document land on the same partition.
type Kafka struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewKafkaWriter builds a synchronous writer for the configured topic.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
}

func NewKafka(w MessageWriter, l *slog.Logger) *Kafka {
	return &Kafka{writer: w, logger: logger.OrDefault(l).With("component", "kafka_sink")}
}

func (k *Kafka) Write(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(records))
	for i := range records {
		value, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("kafka sink: marshaling record: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(records[i].FileName),
			Value: value,
		})
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		k.logger.Error("failed to publish batch", "count", len(msgs), "error", err)
		return fmt.Errorf("kafka sink: %w", err)
	}
	k.logger.Debug("batch published", "count", len(msgs))
	return nil
}

// Close flushes pending writes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
