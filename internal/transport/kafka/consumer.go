package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/logx"
)

// HandleFunc processes a single route request.
type HandleFunc func(context.Context, domain.RoutedRequest) error

type deadLetterSink interface {
	Publish(ctx context.Context, dl DeadLetter) error
}

var newConsumerGroup = sarama.NewConsumerGroup

// ConsumerConfig describes the consumer group subscription.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	Location *time.Location
}

// Consumer wraps a sarama consumer group. Each claimed partition is processed
// sequentially, so requests for one user are handled in publish order.
type Consumer struct {
	group        sarama.ConsumerGroup
	topic        string
	loc          *time.Location
	handler      HandleFunc
	deadLetter   deadLetterSink
	deadLettered *prometheus.CounterVec
	logger       logx.Logger
	retryDelay   time.Duration
}

// NewConsumer creates a consumer. It returns nil when the subscription is not configured.
func NewConsumer(logger logx.Logger, cfg ConsumerConfig, h HandleFunc, dlq deadLetterSink, deadLettered *prometheus.CounterVec) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || strings.TrimSpace(cfg.Topic) == "" || strings.TrimSpace(cfg.GroupID) == "" {
		return nil, nil
	}

	sc := sarama.NewConfig()
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = time.Second
	sc.Consumer.Return.Errors = false

	group, err := newConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Consumer{
		group:        group,
		topic:        cfg.Topic,
		loc:          loc,
		handler:      h,
		deadLetter:   dlq,
		deadLettered: deadLettered,
		logger:       logger,
		retryDelay:   time.Second,
	}, nil
}

// Run consumes until ctx is cancelled, rejoining the group after every session.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.c.logger.Info("kafka session started",
		logx.Any("claims", sess.Claims()),
		logx.String("member_id", sess.MemberID()),
	)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim handles one partition. A message is marked once it was handled or
// dead-lettered. A transient handler error ends the session without marking, so the
// message is redelivered after the rejoin.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		key := string(msg.Key)
		log := h.c.logger.With(
			logx.String("key", key),
			logx.Int64("partition", int64(msg.Partition)),
			logx.Int64("offset", msg.Offset),
		)

		req, err := h.c.decode(msg.Value)
		if err != nil {
			log.Error("kafka bad message", logx.Err(err))
			if err := h.c.sendDeadLetter(sess.Context(), key, msg.Value, err, 0, "decode"); err != nil {
				log.Error("kafka dead letter failed, will redeliver", logx.Err(err))
				return err
			}
			sess.MarkMessage(msg, "")
			continue
		}

		err = h.c.handler(sess.Context(), req)
		if err == nil {
			sess.MarkMessage(msg, "")
			continue
		}

		var perm PermanentError
		if errors.As(err, &perm) {
			log.Error("kafka handle failed, dead-lettering message",
				logx.String("request_id", req.RequestID),
				logx.String("user_id", req.UserID),
				logx.Int("attempts", perm.Attempts),
				logx.Err(err),
			)
			if err := h.c.sendDeadLetter(sess.Context(), key, msg.Value, err, perm.Attempts, "resolve"); err != nil {
				log.Error("kafka dead letter failed, will redeliver", logx.Err(err))
				return err
			}
			sess.MarkMessage(msg, "")
			continue
		}

		log.Warn("kafka handle failed, will redeliver",
			logx.String("request_id", req.RequestID),
			logx.String("user_id", req.UserID),
			logx.Err(err),
		)
		return err
	}
	return nil
}

func (c *Consumer) decode(value []byte) (domain.RoutedRequest, error) {
	var dto RouteRequestDTO
	if err := json.Unmarshal(value, &dto); err != nil {
		return domain.RoutedRequest{}, fmt.Errorf("bad json: %w: %w", apperr.ErrInvalid, err)
	}
	return ToDomain(dto, c.loc)
}

func (c *Consumer) sendDeadLetter(ctx context.Context, key string, value []byte, cause error, attempts int, reason string) error {
	if c.deadLetter == nil {
		c.logger.Warn("no dead letter sink configured, dropping message", logx.String("key", key), logx.Err(cause))
		return nil
	}
	err := c.deadLetter.Publish(ctx, DeadLetter{
		Key:      key,
		Request:  json.RawMessage(value),
		Error:    cause.Error(),
		Kind:     apperr.Kind(cause),
		Attempts: attempts,
	})
	if err != nil {
		return err
	}
	if c.deadLettered != nil {
		c.deadLettered.WithLabelValues(reason).Inc()
	}
	return nil
}
