package curation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"clipbot/logger"
	"clipbot/types"
)

// Curator sends segments for review and waits for the verdict.
type Curator struct {
	store     Store
	msg       Messenger
	log       *logger.Logger
	sendDelay time.Duration
}

func NewCurator(store Store, msg Messenger, log *logger.Logger, sendDelay time.Duration) *Curator {
	return &Curator{store: store, msg: msg, log: log, sendDelay: sendDelay}
}

// Request writes a fresh awaiting session and sends every segment to the chat.
// Send failures are logged; the review can still be finished with commands.
func (c *Curator) Request(ctx context.Context, id, title string, segments []types.Segment) error {
	session := NewSession(id, title, segments, time.Now())
	if err := c.store.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save curation session: %w", err)
	}

	total := len(segments)
	c.send(ctx, fmt.Sprintf("🎬 <b>NOVA CURADORIA DE VÍDEO</b>\n\n📺 %s\n📝 %d segmentos encontrados\n⏰ %s\n\nAnalisando cada segmento...",
		html.EscapeString(title), total, session.Timestamp.Format("15:04:05")))

	for i, seg := range segments {
		if err := c.sleep(ctx); err != nil {
			return err
		}
		SendSegment(ctx, c.msg, c.log, seg, i+1, total)
	}

	c.send(ctx, fmt.Sprintf("✅ Todos os %d segmentos enviados!\n\n%s", total, commandHelp))
	c.log.Info("📱 curation requested", "session", id, "segments", total)
	return nil
}

const commandHelp = "📋 Comandos disponíveis:\n" +
	"/aprovar_todos - Aprovar todas as mídias\n" +
	"/substituir [num] [url] - Substituir mídia\n" +
	"/cancelar - Cancelar este vídeo\n" +
	"/status - Ver status da curadoria"

// SendSegment sends one segment's media, caption and action buttons. num is 1-based.
func SendSegment(ctx context.Context, msg Messenger, log *logger.Logger, seg types.Segment, num, total int) {
	caption := fmt.Sprintf("📌 <b>Segmento %d/%d</b>\n\n📝 Texto: \"%s\"\n\n🔍 Keywords: %s\n🎯 Tipo: %s",
		num, total, html.EscapeString(preview(seg.Text, 700)), html.EscapeString(strings.Join(seg.Keywords, ", ")), seg.Media.Type)

	if err := msg.SendMedia(ctx, seg.Media, caption); err != nil {
		log.Warn("failed to send segment media", "segment", num, "error", err)
		if err := msg.SendText(ctx, caption+"\n🔗 "+html.EscapeString(seg.Media.URL)); err != nil {
			log.Warn("failed to send segment text", "segment", num, "error", err)
		}
	}

	buttons := []Button{
		{Text: "✅ Aprovar", Data: fmt.Sprintf("aprovar_%d", num)},
		{Text: "❌ Reprovar", Data: fmt.Sprintf("reprovar_%d", num)},
		{Text: "🔄 Buscar outra", Data: fmt.Sprintf("buscar_%d", num)},
	}
	if err := msg.SendButtons(ctx, fmt.Sprintf("<b>Segmento %d</b> - O que deseja fazer?", num), buttons); err != nil {
		log.Warn("failed to send segment buttons", "segment", num, "error", err)
	}
}

// Wait polls the session every interval until it is approved, cancelled or the
// timeout elapses. On timeout the session is marked "timeout" and ErrTimeout returned.
func (c *Curator) Wait(ctx context.Context, timeout, every time.Duration) ([]types.Segment, error) {
	// time.Now carries a monotonic reading, so wall clock jumps do not move the deadline.
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	c.log.Info("⏳ waiting for curation", "timeout", timeout)
	for {
		s, err := c.store.Load(ctx)
		switch {
		case err != nil && !errors.Is(err, ErrNoSession):
			c.log.Warn("failed to read curation session", "error", err)
		case err == nil && s.Status == StatusApproved:
			c.log.Info("✅ curation approved", "session", s.ID, "approved", len(s.Approvals), "rejected", len(s.Rejections))
			return s.Segments, nil
		case err == nil && s.Status == StatusCancelled:
			return nil, ErrCancelled
		case err == nil && s.Status == StatusTimeout:
			return nil, ErrTimeout
		}

		if time.Until(deadline) <= 0 {
			return c.expire(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Curator) expire(ctx context.Context) ([]types.Segment, error) {
	s, err := c.store.Update(ctx, func(s *Session) error { return s.Expire() })
	if errors.Is(err, ErrClosed) && s != nil {
		// decided in the last poll interval
		switch s.Status {
		case StatusApproved:
			return s.Segments, nil
		case StatusCancelled:
			return nil, ErrCancelled
		}
	} else if err != nil {
		c.log.Warn("failed to mark curation timeout", "error", err)
	}
	c.log.Warn("⏰ curation timed out, video cancelled")
	c.send(ctx, "⏰ Tempo de curadoria esgotado. Vídeo cancelado.")
	return nil, ErrTimeout
}

// NotifyPublished tells the chat a video went live.
func (c *Curator) NotifyPublished(ctx context.Context, rec types.RunRecord) error {
	return c.msg.SendText(ctx, fmt.Sprintf("🎉 <b>VÍDEO PUBLICADO!</b>\n\n📺 Título: %s\n⏱️ Duração: %.1fs\n🔗 URL: %s\n\n✅ Publicado com sucesso!",
		html.EscapeString(rec.Title), rec.Duration, rec.URL))
}

func (c *Curator) send(ctx context.Context, text string) {
	if err := c.msg.SendText(ctx, text); err != nil {
		c.log.Warn("failed to send chat message", "error", err)
	}
}

func (c *Curator) sleep(ctx context.Context) error {
	if c.sendDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.sendDelay):
		return nil
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
