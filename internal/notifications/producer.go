package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"zinema/internal/bookings"
	"zinema/internal/shared/config"
)

// Producer publishes notification and loyalty events to Kafka. It satisfies
// the publisher contract the payment confirmation service expects.
type Producer interface {
	PublishBookingConfirmed(ctx context.Context, booking *bookings.Booking) error
	PublishLoyaltyCredit(ctx context.Context, userID string, amount float64) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	BrokerList        []string
	NotificationTopic string
	LoyaltyTopic      string
	RetryMax          int
	TimeoutMs         int
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		BrokerList:        []string{"localhost:9092"},
		NotificationTopic: "notifications",
		LoyaltyTopic:      "loyalty-credits",
		RetryMax:          3,
		TimeoutMs:         10000,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000, // 1MB
	}
}

// ProducerConfigFromApp builds a producer config from application config
func ProducerConfigFromApp(cfg *config.Config) *KafkaProducerConfig {
	pc := DefaultKafkaProducerConfig()
	pc.BrokerList = cfg.Kafka.Brokers
	pc.NotificationTopic = cfg.Kafka.NotificationTopic
	pc.LoyaltyTopic = cfg.Kafka.LoyaltyTopic
	return pc
}

// KafkaProducer publishes events through a sarama sync producer
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaProducer creates a new Kafka notification producer
func NewKafkaProducer(config *KafkaProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps per-recipient ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.BrokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("📤 Kafka producer created, brokers: %v", config.BrokerList)
	return &KafkaProducer{producer: producer, config: config}, nil
}

// PublishBookingConfirmed queues a confirmation email for a paid booking
func (kp *KafkaProducer) PublishBookingConfirmed(ctx context.Context, booking *bookings.Booking) error {
	notification := NewEmailNotification(NotificationTypeBookingConfirmed)
	notification.Priority = NotificationPriorityHigh
	notification.RecipientID = booking.UserID
	notification.RecipientEmail = booking.UserEmail
	notification.Subject = fmt.Sprintf("Booking %s confirmed", booking.BookingRef)
	notification.ShowID = &booking.ShowID
	notification.BookingID = &booking.ID
	notification.TemplateData = map[string]interface{}{
		"BookingRef": booking.BookingRef,
		"TotalSeats": booking.TotalSeats,
		"Seats":      booking.SeatLabels(),
		"Amount":     fmt.Sprintf("%.2f", booking.Amount),
	}

	return kp.publishNotification(notification)
}

// PublishLoyaltyCredit emits a loyalty credit for a paid booking
func (kp *KafkaProducer) PublishLoyaltyCredit(ctx context.Context, userID string, amount float64) error {
	event := LoyaltyCreditEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Amount:     amount,
		OccurredAt: time.Now(),
	}

	payload, err := event.marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal loyalty event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.LoyaltyTopic,
		Key:       sarama.StringEncoder(userID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send loyalty event to Kafka: %w", err)
	}

	log.Printf("📤 Loyalty credit published - Partition: %d, Offset: %d, User: %s, Amount: %.2f",
		partition, offset, userID, amount)
	return nil
}

func (kp *KafkaProducer) publishNotification(notification *EmailNotification) error {
	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.NotificationTopic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	log.Printf("📤 Notification published - Topic: %s, Partition: %d, Offset: %d, Type: %s, Recipient: %s",
		kp.config.NotificationTopic, partition, offset, notification.Type, notification.RecipientEmail)
	return nil
}

func (kp *KafkaProducer) createHeaders(notification *EmailNotification) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("priority"), Value: []byte(notification.Priority)},
	}
}

// Close shuts down the producer
func (kp *KafkaProducer) Close() error {
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	log.Println("📤 Kafka producer closed")
	return nil
}

// HealthCheck verifies the producer can reach the cluster
func (kp *KafkaProducer) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return fmt.Errorf("producer is not initialized")
	}
	return nil
}

// NoopProducer is used when Kafka is disabled; publishes are logged and dropped.
type NoopProducer struct{}

func NewNoopProducer() Producer { return &NoopProducer{} }

func (np *NoopProducer) PublishBookingConfirmed(ctx context.Context, booking *bookings.Booking) error {
	log.Printf("📤 [noop] booking confirmed: %s (%s)", booking.BookingRef, booking.UserEmail)
	return nil
}

func (np *NoopProducer) PublishLoyaltyCredit(ctx context.Context, userID string, amount float64) error {
	log.Printf("📤 [noop] loyalty credit: user=%s amount=%.2f", userID, amount)
	return nil
}

func (np *NoopProducer) Close() error { return nil }

func (np *NoopProducer) HealthCheck(ctx context.Context) error { return nil }
