package utils

import (
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kizunalink/kizuna-backend/config"
)

// NewKafkaWriter builds the producer for the notification topic. Returns
// nil when Kafka is not configured; dispatch then happens in-process.
func NewKafkaWriter(cfg *config.Config) *kafka.Writer {
	if cfg.KafkaBrokers == "" {
		log.Println("Kafka not configured, notifications dispatch in-process")
		return nil
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaReader builds the consumer for the notification topic.
func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	if cfg.KafkaBrokers == "" {
		return nil
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
