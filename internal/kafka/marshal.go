package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType = "event_type"
	HeaderProducer  = "producer"
)

// EncodeEnvelope keys the message by order so one order's events stay on
// one partition, in publish order.
func EncodeEnvelope(ev orders.Envelope) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope %s: %w", ev.EventType, err)
	}
	return kafka.Message{
		Key:   orders.PartitionKey(ev.CorrelationID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.EventType)},
			{Key: HeaderProducer, Value: []byte(ev.Producer)},
		},
	}, nil
}

func DecodeEnvelope(m kafka.Message) (orders.Envelope, error) {
	var ev orders.Envelope
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return ev, fmt.Errorf("decode envelope at offset %d: %w", m.Offset, err)
	}
	if ev.EventType == "" {
		return ev, fmt.Errorf("decode envelope at offset %d: missing event_type", m.Offset)
	}
	return ev, nil
}
