package curation

import (
	"context"
	"time"

	"clipbot/logger"
)

// Poller long-polls the messenger and feeds updates to a Handler.
type Poller struct {
	msg     Messenger
	handler *Handler
	log     *logger.Logger
	offset  int
	backoff time.Duration
}

func NewPoller(msg Messenger, handler *Handler, log *logger.Logger) *Poller {
	return &Poller{msg: msg, handler: handler, log: log, backoff: 5 * time.Second}
}

// Offset is the next update ID the poller will ask for.
func (p *Poller) Offset() int { return p.offset }

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("🤖 curation bot polling")
	for {
		if err := p.Poll(ctx, 30); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("failed to fetch updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Poll fetches and handles one batch, advancing the offset past every update seen.
func (p *Poller) Poll(ctx context.Context, timeoutSeconds int) error {
	updates, err := p.msg.Updates(ctx, p.offset, timeoutSeconds)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.ID >= p.offset {
			p.offset = u.ID + 1
		}
		if err := p.handler.HandleUpdate(ctx, u); err != nil {
			p.log.Warn("failed to handle update", "update", u.ID, "error", err)
		}
	}
	return nil
}
