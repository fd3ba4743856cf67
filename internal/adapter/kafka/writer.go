package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/vizdata-etl-service/internal/config"
	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Dataset header values.
const (
	datasetRecipeNode   = "recipe_node"
	datasetRecipeLink   = "recipe_link"
	datasetCountyMetric = "county_metric"
	datasetSnapshot     = "snapshot"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes snapshots to a Kafka topic, one message per record
// followed by a closing snapshot summary.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// LoadSnapshot serializes every record of snap and publishes them in a single
// WriteMessages call.
func (w *Writer) LoadSnapshot(ctx context.Context, snap domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot messages: %w", err)
	}
	w.metrics.MessagesProduced.Add(float64(len(msgs)))
	w.logger.Debug("snapshot written", "run_id", snap.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// snapshotMessages maps a snapshot to its ordered message list. The summary
// message is always last.
func snapshotMessages(snap domain.Snapshot) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	add := func(dataset, key string, v any) error {
		msg, err := serializeToMessage(snap, dataset, key, v)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		return nil
	}

	if g := snap.Recipes; g != nil {
		for _, n := range g.Nodes {
			if err := add(datasetRecipeNode, "recipe_node:"+string(n.ID), n); err != nil {
				return nil, err
			}
		}
		for _, l := range g.Links {
			key := fmt.Sprintf("recipe_link:%s:%s", l.Source, l.Target)
			if err := add(datasetRecipeLink, key, l); err != nil {
				return nil, err
			}
		}
	}
	if c := snap.Counties; c != nil {
		for _, m := range c.Counties {
			if err := add(datasetCountyMetric, "county_metric:"+m.CountyID, m); err != nil {
				return nil, err
			}
		}
	}
	if err := add(datasetSnapshot, datasetSnapshot, snap.Summary()); err != nil {
		return nil, err
	}
	return msgs, nil
}

// serializeToMessage marshals one record into a Kafka message.
func serializeToMessage(snap domain.Snapshot, dataset, key string, v any) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s %s: %w", dataset, key, err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset", Value: []byte(dataset)},
			{Key: "run_id", Value: []byte(snap.RunID)},
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
