package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipbot/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer publishes generation requests.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newProducer(p, topic, log), nil
}

func newProducer(p sarama.SyncProducer, topic string, log *logger.Logger) *Producer {
	return &Producer{producer: p, topic: topic, log: log}
}

// Enqueue sends req keyed by its ID, assigning one when empty. It returns the ID.
func (p *Producer) Enqueue(ctx context.Context, req GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(req.ID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return "", fmt.Errorf("failed to enqueue request: %w", err)
	}

	p.log.Info("📨 request enqueued", "id", req.ID, "topic", p.topic, "partition", partition, "offset", offset)
	return req.ID, nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
