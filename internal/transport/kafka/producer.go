package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/logx"
)

var newSyncProducer = sarama.NewSyncProducer

// NewSyncProducer connects a producer that waits for all in-sync replicas and hashes
// message keys to partitions, so one key always maps to one partition.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka producer: no brokers configured")
	}
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 10 * time.Second

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

// Publisher publishes route requests keyed by user id.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
	newID    func() string
	now      func() time.Time
}

// NewPublisher creates a Publisher writing to topic.
func NewPublisher(producer sarama.SyncProducer, topic string, logger logx.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Publish sends a fresh route request for c and blocks until the broker acknowledges it.
// Every call gets a new request id, repeated calls for one user are not deduplicated.
func (p *Publisher) Publish(ctx context.Context, c domain.CommuteCandidate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID := strings.TrimSpace(c.UserID)
	if userID == "" {
		return "", fmt.Errorf("publish route request: empty user id: %w", apperr.ErrInvalid)
	}

	req := domain.NewRoutedRequest(p.newID(), c, p.now().In(c.ArriveBy.Location()))
	value, err := json.Marshal(FromDomain(req))
	if err != nil {
		return "", fmt.Errorf("encode route request: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return "", fmt.Errorf("publish route request for user %s: %w", userID, err)
	}

	p.logger.Debug("route request acknowledged",
		logx.String("request_id", req.RequestID),
		logx.String("user_id", userID),
		logx.Int64("partition", int64(partition)),
		logx.Int64("offset", offset),
	)
	return req.RequestID, nil
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
