package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Relay publishes audit events to Kafka so downstream consumers (SIEM,
// compliance archive) receive them without reading our database. Records are
// keyed by category, which keeps each category ordered within a partition.
type Relay struct {
	client *kgo.Client
	topic  string
}

func NewRelay(brokers []string, topic string) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Relay{client: client, topic: topic}, nil
}

func (r *Relay) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.Category),
		Value: payload,
	}
	if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (r *Relay) Close() {
	r.client.Close()
}
