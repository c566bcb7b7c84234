// Package kafka publishes ledger events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tinoosan/groupledger/internal/events"
)

const DefaultTopic = "ledger.entry_recorded"

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher writes to topic on brokers. An empty topic uses DefaultTopic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, ev events.EntryRecorded) error {
	msg, err := newMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error { return p.writer.Close() }

// newMessage keys by entry id so every delivery of one entry lands on the same partition.
func newMessage(ev events.EntryRecorded) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.ID),
		Value: data,
		Time:  ev.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("entry_recorded")},
		},
	}, nil
}

var _ events.Publisher = (*Publisher)(nil)
