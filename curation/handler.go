package curation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"clipbot/logger"
	"clipbot/types"
)

// MediaSource finds replacement media for segments.
type MediaSource interface {
	Next(ctx context.Context, seg types.Segment, attempt int) (types.Media, error)
	Fallback() (types.Media, error)
}

// Handler applies chat commands and button presses to the shared session.
type Handler struct {
	store  Store
	msg    Messenger
	media  MediaSource
	chatID int64
	log    *logger.Logger
}

func NewHandler(store Store, msg Messenger, media MediaSource, chatID int64, log *logger.Logger) *Handler {
	return &Handler{store: store, msg: msg, media: media, chatID: chatID, log: log}
}

// HandleUpdate processes one update. Updates from other chats are ignored,
// and so is everything when no chat is configured.
func (h *Handler) HandleUpdate(ctx context.Context, u Update) error {
	if h.chatID == 0 {
		h.log.Warn("ignoring update, no curation chat configured", "chat", u.ChatID)
		return nil
	}
	if u.ChatID != h.chatID {
		h.log.Warn("ignoring update from unknown chat", "chat", u.ChatID)
		return nil
	}

	if u.IsCallback() {
		reply := h.handleCallback(ctx, u.CallbackData)
		if err := h.msg.AnswerCallback(ctx, u.CallbackID, reply); err != nil {
			h.log.Warn("failed to answer callback", "error", err)
		}
		return nil
	}

	text := strings.TrimSpace(u.Text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}
	reply := h.handleCommand(ctx, text)
	if reply == "" {
		return nil
	}
	return h.msg.SendText(ctx, reply)
}

func (h *Handler) handleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/aprovar_todos", "/approve_all":
		_, err := ApproveAll(ctx, h.store)
		if err != nil {
			return h.errorReply(err)
		}
		h.log.Info("✅ all segments approved via chat")
		return "✅ Todos os segmentos aprovados!"

	case "/substituir", "/replace":
		if len(args) < 2 {
			return "⚠️ Uso: /substituir [num] [url]"
		}
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return "⚠️ Número de segmento inválido: " + html.EscapeString(args[0])
		}
		url := args[1]
		media := types.Media{URL: url, Type: types.MediaTypeFromURL(url)}
		if _, err := h.store.Update(ctx, func(s *Session) error { return s.Replace(num-1, media) }); err != nil {
			return h.errorReply(err)
		}
		return fmt.Sprintf("✅ Segmento %d substituído (%s)!", num, media.Type)

	case "/cancelar", "/cancel":
		if _, err := Cancel(ctx, h.store); err != nil {
			return h.errorReply(err)
		}
		h.log.Info("❌ video cancelled via chat")
		return "❌ Vídeo cancelado!"

	case "/status":
		s, err := h.store.Load(ctx)
		if err != nil {
			return h.errorReply(err)
		}
		return StatusMessage(s)

	default:
		return ""
	}
}

func (h *Handler) handleCallback(ctx context.Context, data string) string {
	action, numStr, ok := strings.Cut(data, "_")
	if !ok {
		return ""
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return "Segmento inválido"
	}
	i := num - 1

	switch action {
	case "aprovar":
		s, err := h.store.Update(ctx, func(s *Session) error { return s.Approve(i) })
		if err != nil {
			return h.callbackError(err)
		}
		if s.Status == StatusApproved {
			h.send(ctx, "✅ Todos os segmentos decididos. Curadoria aprovada!")
		}
		return fmt.Sprintf("Segmento %d aprovado", num)

	case "reprovar":
		var fallback types.Media
		if h.media != nil {
			if m, err := h.media.Fallback(); err == nil {
				fallback = m
			} else {
				h.log.Warn("no fallback media for rejected segment", "segment", num, "error", err)
			}
		}
		if _, err := h.store.Update(ctx, func(s *Session) error { return s.Reject(i, fallback) }); err != nil {
			return h.callbackError(err)
		}
		return fmt.Sprintf("Segmento %d reprovado", num)

	case "buscar":
		return h.searchAnother(ctx, i, num)
	}
	return ""
}

func (h *Handler) searchAnother(ctx context.Context, i, num int) string {
	if h.media == nil {
		return "Busca indisponível"
	}

	var seg types.Segment
	var attempt int
	if _, err := h.store.Update(ctx, func(s *Session) error {
		if err := s.check(i); err != nil {
			return err
		}
		attempt = s.NextAttempt(i)
		seg = s.Segments[i]
		return nil
	}); err != nil {
		return h.callbackError(err)
	}

	// Search outside the store lock.
	found, err := h.media.Next(ctx, seg, attempt)
	if err != nil {
		h.log.Warn("search another failed", "segment", num, "error", err)
		return h.callbackError(err)
	}

	s, err := h.store.Update(ctx, func(s *Session) error { return s.Retry(i, found) })
	if err != nil {
		return h.callbackError(err)
	}
	total := len(s.Segments)

	SendSegment(ctx, h.msg, h.log, s.Segments[i], num, total)
	h.log.Info("🔄 segment media replaced by search", "segment", num, "url", found.URL)
	return fmt.Sprintf("Nova mídia para o segmento %d", num)
}

func (h *Handler) send(ctx context.Context, text string) {
	if err := h.msg.SendText(ctx, text); err != nil {
		h.log.Warn("failed to send chat message", "error", err)
	}
}

func (h *Handler) errorReply(err error) string {
	switch {
	case errors.Is(err, ErrNoSession):
		return "⚠️ Nenhuma curadoria pendente"
	case errors.Is(err, ErrClosed):
		return "⚠️ Esta curadoria já foi finalizada"
	case errors.Is(err, ErrOutOfRange):
		return "⚠️ Segmento inexistente"
	default:
		h.log.Error("curation command failed", "error", err)
		return "❌ Erro: " + html.EscapeString(err.Error())
	}
}

func (h *Handler) callbackError(err error) string {
	switch {
	case errors.Is(err, ErrNoSession):
		return "Nenhuma curadoria pendente"
	case errors.Is(err, ErrClosed):
		return "Curadoria já finalizada"
	case errors.Is(err, ErrOutOfRange):
		return "Segmento inexistente"
	default:
		return "Erro: " + err.Error()
	}
}

// ApproveAll approves every segment that was not rejected.
func ApproveAll(ctx context.Context, store Store) (*Session, error) {
	return store.Update(ctx, func(s *Session) error { return s.ApproveAll() })
}

// Cancel cancels the pending session.
func Cancel(ctx context.Context, store Store) (*Session, error) {
	return store.Update(ctx, func(s *Session) error { return s.Cancel() })
}

// StatusMessage renders the /status reply.
func StatusMessage(s *Session) string {
	return fmt.Sprintf("📊 <b>STATUS DA CURADORIA</b>\n\n✅ Aprovados: %d/%d\n❌ Reprovados: %d\n📌 Status: %s\n➡️ Segmento atual: %d\n⏰ Iniciado: %s",
		len(s.Approvals), len(s.Segments), len(s.Rejections), s.Status,
		min(s.CurrentSegmentIndex+1, len(s.Segments)), s.Timestamp.Format("2006-01-02 15:04:05"))
}
