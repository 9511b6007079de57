package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"SugarMill.twin/internal/models"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SummaryEvent is the compact record sent to Kafka for every tick.
type SummaryEvent struct {
	MillID     string                     `json:"millId"`
	Summary    models.Summary             `json:"summary"`
	Production *models.ProductionSnapshot `json:"production,omitempty"`
	Alerts     []models.SensorReading     `json:"alerts"`
	Timestamp  int64                      `json:"timestamp"`
}

// KafkaPublisher emits one SummaryEvent per snapshot, keyed by mill id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) Publish(ctx context.Context, state models.TwinState) error {
	b, err := json.Marshal(summaryEvent(state))
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	msg := kafka.Message{Key: []byte(state.MillID), Value: b, Time: state.UpdatedAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	p.logger.Debug("summary published", "mill", state.MillID, "health", state.Summary.SystemHealthPercent)
	return nil
}

// summaryEvent keeps only readings that are not normal.
func summaryEvent(state models.TwinState) SummaryEvent {
	alerts := []models.SensorReading{}
	for _, r := range state.Readings {
		if r.Status != models.StatusNormal {
			alerts = append(alerts, r)
		}
	}
	return SummaryEvent{
		MillID:     state.MillID,
		Summary:    state.Summary,
		Production: state.Production,
		Alerts:     alerts,
		Timestamp:  state.UpdatedAt.UnixMilli(),
	}
}
