// Package queue feeds generation requests to the pipeline through Kafka.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clipbot/logger"

	"github.com/IBM/sarama"
)

const consumeRetryDelay = 5 * time.Second

// MessageHandler processes a consumed message and says whether to mark it.
// An unmarked message is redelivered after a restart or rebalance.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer wraps a sarama consumer group with a pluggable handler.
type Consumer struct {
	consumer sarama.ConsumerGroup
	handler  MessageHandler
	topic    string
	groupID  string
	ready    chan bool
	log      *logger.Logger
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

func NewConsumer(cfg ConsumerConfig, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	client, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		consumer: client,
		handler:  cfg.Handler,
		topic:    cfg.Topic,
		groupID:  cfg.GroupID,
		ready:    make(chan bool),
		log:      log,
	}, nil
}

// Start consumes in the background and returns once the first session is set up.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		messageHandler: c.handler,
		ready:          c.ready,
		log:            c.log,
	}

	go func() {
		for {
			err := c.consumer.Consume(ctx, []string{c.topic}, handler)
			if ctx.Err() != nil || errors.Is(err, sarama.ErrClosedConsumerGroup) {
				c.log.Info("kafka consumer stopped")
				return
			}
			if err != nil {
				c.log.Error("kafka consume failed, retrying", "error", err, "delay", consumeRetryDelay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(consumeRetryDelay):
				}
			}
			handler.ready = make(chan bool)
		}
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.log.Info("✅ kafka consumer started", "group", c.groupID, "topic", c.topic)

	go func() {
		for err := range c.consumer.Errors() {
			c.log.Error("❌ kafka consumer error", "error", err)
		}
	}()
	return nil
}

func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.consumer.Close()
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler.
type consumerGroupHandler struct {
	messageHandler MessageHandler
	ready          chan bool
	log            *logger.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			key := string(message.Key)
			h.log.Info("📥 received request", "key", key, "partition", message.Partition, "offset", message.Offset)

			started := time.Now()
			shouldMark, err := h.messageHandler.HandleMessage(session.Context(), message.Value)
			took := time.Since(started).Round(time.Second)
			switch {
			case err != nil:
				h.log.Error("❌ request failed", "key", key, "took", took, "error", err)
			case shouldMark:
				h.log.Info("request handled", "key", key, "took", took)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON into T before validating and processing it.
type TypedMessageHandler[T any] struct {
	Validate func(msg *T) bool
	Process  func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable and invalid messages so they are skipped.
	// Processing failures are never marked.
	AlwaysMark bool
	Log        *logger.Logger
}

func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		if h.Log != nil {
			h.Log.Warn("❌ failed to unmarshal message", "error", err)
		}
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
