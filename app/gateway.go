package app

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/telegram/keyboard"
	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"
	"github.com/m3rciful/intakebot/intake/gateway"
)

// messenger is the part of *tele.Bot the gateway needs.
type messenger interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// TelegramGateway sends intake messages through the Bot API with retries.
// Texts are rendered with legacy Markdown.
type TelegramGateway struct {
	api    messenger
	sender *tgsender.Sender
}

// NewTelegramGateway wraps api; sender may be nil for direct sends.
func NewTelegramGateway(api messenger, sender *tgsender.Sender) *TelegramGateway {
	if sender == nil {
		sender = tgsender.New(tgsender.Options{})
	}
	return &TelegramGateway{api: api, sender: sender}
}

func (g *TelegramGateway) SendText(ctx context.Context, chatID int64, text string, kb *gateway.Keyboard) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: Markup(kb)}
	return g.sender.Do(ctx, "send.text", "sendMessage", func() error {
		_, err := g.api.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

func (g *TelegramGateway) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	return g.sender.Do(ctx, "send.photo", "sendPhoto", func() error {
		_, err := g.api.Send(tele.ChatID(chatID), photo)
		return err
	})
}

func (g *TelegramGateway) SendDocument(ctx context.Context, chatID int64, fileID, caption string) error {
	doc := &tele.Document{File: tele.File{FileID: fileID}, Caption: caption}
	return g.sender.Do(ctx, "send.document", "sendDocument", func() error {
		_, err := g.api.Send(tele.ChatID(chatID), doc)
		return err
	})
}

// Markup converts a transport-neutral keyboard into telebot markup; nil stays nil.
func Markup(kb *gateway.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return keyboard.RemoveKeyboard()
	case len(kb.Inline) > 0:
		row := make([]keyboard.InlineBtn, 0, len(kb.Inline))
		for _, b := range kb.Inline {
			row = append(row, keyboard.InlineBtn{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		return keyboard.InlineButtonsRows(row)
	case len(kb.Rows) > 0:
		return keyboard.ReplyButtons(kb.Rows...)
	}
	return nil
}

var _ gateway.Gateway = (*TelegramGateway)(nil)
