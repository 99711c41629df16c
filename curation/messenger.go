package curation

import (
	"context"
	"fmt"
	"strings"

	"clipbot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Update is an incoming chat message or button press.
type Update struct {
	ID           int
	ChatID       int64
	Text         string
	CallbackID   string
	CallbackData string
}

func (u Update) IsCallback() bool { return u.CallbackID != "" }

// Messenger is the chat transport used by the curator.
type Messenger interface {
	SendText(ctx context.Context, text string) error
	SendMedia(ctx context.Context, media types.Media, caption string) error
	SendButtons(ctx context.Context, text string, buttons []Button) error
	AnswerCallback(ctx context.Context, id, text string) error
	Updates(ctx context.Context, offset, timeoutSeconds int) ([]Update, error)
}

// Telegram implements Messenger with the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) ChatID() int64 { return t.chatID }

func (t *Telegram) SendText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(msg)
	return err
}

func (t *Telegram) SendMedia(ctx context.Context, media types.Media, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var file tgbotapi.RequestFileData = tgbotapi.FileURL(media.URL)
	if media.Type == types.MediaLocalPhoto || !strings.HasPrefix(media.URL, "http") {
		file = tgbotapi.FilePath(firstNonEmpty(media.Path, media.URL))
	}

	var c tgbotapi.Chattable
	if media.Type == types.MediaVideo {
		v := tgbotapi.NewVideo(t.chatID, file)
		v.Caption = caption
		v.ParseMode = tgbotapi.ModeHTML
		c = v
	} else {
		p := tgbotapi.NewPhoto(t.chatID, file)
		p.Caption = caption
		p.ParseMode = tgbotapi.ModeHTML
		c = p
	}
	_, err := t.bot.Send(c)
	return err
}

func (t *Telegram) SendButtons(ctx context.Context, text string, buttons []Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data)))
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := t.bot.Send(msg)
	return err
}

func (t *Telegram) AnswerCallback(_ context.Context, id, text string) error {
	_, err := t.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

func (t *Telegram) Updates(ctx context.Context, offset, timeoutSeconds int) ([]Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = timeoutSeconds
	raw, err := t.bot.GetUpdates(cfg)
	if err != nil {
		return nil, err
	}

	out := make([]Update, 0, len(raw))
	for _, u := range raw {
		upd := Update{ID: u.UpdateID}
		switch {
		case u.CallbackQuery != nil:
			upd.CallbackID = u.CallbackQuery.ID
			upd.CallbackData = u.CallbackQuery.Data
			if u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil {
				upd.ChatID = u.CallbackQuery.Message.Chat.ID
			}
		case u.Message != nil:
			upd.Text = u.Message.Text
			if u.Message.Chat != nil {
				upd.ChatID = u.Message.Chat.ID
			}
		}
		out = append(out, upd)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
