package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paystream-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// OperationReqMessageProducer publishes inbound operation requests from the
// API gateway onto the operations topic for the processor to consume.
type OperationReqMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewOperationReqMessageProducer creates the gateway-side producer and ensures the topic exists
func NewOperationReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*OperationReqMessageProducer, error) {
	if cfg.OperationsTopic == "" {
		return nil, fmt.Errorf("kafka operations topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for operation producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.OperationsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure operations topic %s exists: %w", cfg.OperationsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.OperationsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.OperationsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.OperationsTopic, "count", len(messages))
			}
		},
	}

	return &OperationReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.OperationsTopic,
	}, nil
}

func (p *OperationReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal operation request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish operation request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish operation request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published operation request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *OperationReqMessageProducer) Close() error {
	p.logger.Info("Closing operation request Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close operation request kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
