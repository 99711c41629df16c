package queue

import (
	"context"
	"errors"
	"time"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/logger"
	"clipbot/pipeline"
)

// GenerationRequest asks a worker to produce one video.
type GenerationRequest struct {
	ID          string    `json:"id"`
	Profile     string    `json:"profile,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	Curate      *bool     `json:"curate,omitempty"`
	SkipUpload  bool      `json:"skip_upload,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Validate rejects requests the pipeline cannot run.
func (r *GenerationRequest) Validate() error {
	if r.ID == "" {
		return errors.New("missing request id")
	}
	switch r.Profile {
	case "", "short", "long":
	default:
		return errors.New("unknown profile " + r.Profile)
	}
	return nil
}

func (r *GenerationRequest) toPipeline() pipeline.Request {
	return pipeline.Request{
		ID:         r.ID,
		Profile:    r.Profile,
		Topic:      r.Topic,
		Curate:     r.Curate,
		SkipUpload: r.SkipUpload,
	}
}

// Runner is the part of pipeline.Runner the worker uses.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// NewRunHandler runs the pipeline for every valid request. A busy runner is
// waited on; a cancelled curation is a final answer and gets marked.
func NewRunHandler(runner Runner, log *logger.Logger, busyWait time.Duration) *TypedMessageHandler[GenerationRequest] {
	return &TypedMessageHandler[GenerationRequest]{
		Validate: func(msg *GenerationRequest) bool {
			if err := msg.Validate(); err != nil {
				log.Warn("⚠️ skipping invalid request", "id", msg.ID, "error", err)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *GenerationRequest) error {
			log.Info("🎬 processing request", "id", msg.ID, "profile", msg.Profile, "topic", msg.Topic)
			for {
				_, err := runner.Run(ctx, msg.toPipeline())
				switch {
				case err == nil:
					log.Info("✅ request done", "id", msg.ID)
					return nil
				case errors.Is(err, curation.ErrCancelled), errors.Is(err, curation.ErrTimeout):
					log.Warn("request cancelled during curation", "id", msg.ID)
					return nil
				case errors.Is(err, pipeline.ErrBusy):
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(busyWait):
					}
				default:
					return err
				}
			}
		},
		AlwaysMark: true,
		Log:        log,
	}
}

// Brokers parses KAFKA_BOOTSTRAP_SERVERS.
func Brokers() []string {
	return config.GetEnvList("KAFKA_BOOTSTRAP_SERVERS", []string{"localhost:9093"})
}

// Topic returns KAFKA_TOPIC_VIDEO_REQUESTS.
func Topic() string {
	return config.GetEnvOrDefault("KAFKA_TOPIC_VIDEO_REQUESTS", "clipbot-video-requests")
}

// GroupID returns KAFKA_CONSUMER_GROUP_ID.
func GroupID() string {
	return config.GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID", "clipbot-workers")
}
