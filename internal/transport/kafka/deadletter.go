package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// DeadLetter is the value written to the dead letter topic.
type DeadLetter struct {
	Key      string          `json:"key"`
	Request  json.RawMessage `json:"request,omitempty"`
	Raw      string          `json:"raw,omitempty"`
	Error    string          `json:"error"`
	Kind     string          `json:"kind"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

// DeadLetterPublisher writes failed requests to a dead letter topic, keyed like the source.
type DeadLetterPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewDeadLetterPublisher creates a DeadLetterPublisher writing to topic.
func NewDeadLetterPublisher(producer sarama.SyncProducer, topic string) *DeadLetterPublisher {
	return &DeadLetterPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish sends dl and waits for the broker acknowledgement.
func (d *DeadLetterPublisher) Publish(ctx context.Context, dl DeadLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl.FailedAt.IsZero() {
		dl.FailedAt = d.now().UTC()
	}
	if dl.Request != nil && !json.Valid(dl.Request) {
		dl.Raw = string(dl.Request)
		dl.Request = nil
	}
	value, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Value: sarama.ByteEncoder(value),
	}
	if dl.Key != "" {
		msg.Key = sarama.StringEncoder(dl.Key)
	}
	if _, _, err := d.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (d *DeadLetterPublisher) Close() error {
	if d == nil || d.producer == nil {
		return nil
	}
	return d.producer.Close()
}
