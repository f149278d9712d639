package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"boxoffice/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaConfig contains configuration for the Kafka seat-event publisher
type KafkaConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	TimeoutMs       int
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
	MaxMessageBytes int
}

// DefaultKafkaConfig returns a default publisher configuration
func DefaultKafkaConfig(brokers []string, topic string) *KafkaConfig {
	return &KafkaConfig{
		Brokers:         brokers,
		Topic:           topic,
		RetryMax:        3,
		TimeoutMs:       10000,
		RequiredAcks:    sarama.WaitForAll,
		CompressionType: sarama.CompressionSnappy,
		MaxMessageBytes: 1000000, // 1MB
	}
}

// KafkaNotifier publishes seat transitions to Kafka. Messages are
// hash-partitioned by event id, so one event's transitions land on one
// partition and cross-instance subscribers see them in seat-store order.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	config   *KafkaConfig
	log      *logger.Logger
}

// NewKafkaNotifier creates a Kafka-backed change notifier.
func NewKafkaNotifier(config *KafkaConfig) (*KafkaNotifier, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Hash partitioner keeps one event's transitions on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaNotifier{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

// Close shuts the underlying producer down.
func (k *KafkaNotifier) Close() error {
	return k.producer.Close()
}

// publish sends one envelope. Failures are logged, never surfaced: the
// notifier is a best-effort sink and no state decision reads it back.
func (k *KafkaNotifier) publish(ctx context.Context, msgType, eventID string, payload interface{}) {
	envelope, err := newEnvelope(msgType, eventID, payload)
	if err != nil {
		k.log.ErrorContext(ctx, "failed to encode notification",
			slog.String("type", msgType), slog.Any("error", err))
		return
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		k.log.ErrorContext(ctx, "failed to marshal notification envelope",
			slog.String("type", msgType), slog.Any("error", err))
		return
	}

	message := &sarama.ProducerMessage{
		Topic: k.config.Topic,
		Key:   sarama.StringEncoder(eventID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(msgType)},
			{Key: []byte("event_id"), Value: []byte(eventID)},
		},
		Timestamp: envelope.At,
	}

	if _, _, err := k.producer.SendMessage(message); err != nil {
		k.log.ErrorContext(ctx, "failed to publish notification",
			slog.String("type", msgType),
			slog.String("event_id", eventID),
			slog.Any("error", err))
	}
}

func (k *KafkaNotifier) SeatStatusChanged(ctx context.Context, eventID string, update SeatUpdate) {
	k.publish(ctx, TypeSeatStatusChanged, eventID, update)
}

func (k *KafkaNotifier) BulkSeatUpdate(ctx context.Context, eventID string, updates []SeatUpdate) {
	k.publish(ctx, TypeBulkSeatUpdate, eventID, updates)
}

func (k *KafkaNotifier) CapacityUpdate(ctx context.Context, eventID string, summary CapacitySummary) {
	k.publish(ctx, TypeCapacityUpdate, eventID, summary)
}

func (k *KafkaNotifier) SellingFast(ctx context.Context, eventID string, summary CapacitySummary) {
	k.publish(ctx, TypeSellingFast, eventID, summary)
}

func (k *KafkaNotifier) HoldExpiryWarning(ctx context.Context, eventID string, warning ExpiryWarning) {
	k.publish(ctx, TypeHoldExpiryWarning, eventID, warning)
}
