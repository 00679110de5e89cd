// Package kafkabus builds segmentio/kafka-go writers and readers from the
// service configuration.
package kafkabus

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// Config names the brokers, topic and consumer group.
type Config struct {
	Brokers string // comma separated host:port list
	Topic   string
	GroupID string
}

func (c Config) brokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewWriter returns a writer for cfg.Topic.
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.brokerList()...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// NewReader returns a consumer-group reader for cfg.Topic.
func NewReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.brokerList(),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
}
