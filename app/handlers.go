package app

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/buildinfo"
	"github.com/m3rciful/intakebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/intake/dialogue"
	"github.com/m3rciful/intakebot/intake/session"
)

const msgUnsupportedMedia = "Этот тип вложений не поддерживается. Пришлите фото или документ."

// engine is the inbound side of the dialogue.
type engine interface {
	OnText(ctx context.Context, user dialogue.User, text string) error
	OnCallback(ctx context.Context, user dialogue.User, data string) error
	OnAttachment(ctx context.Context, user dialogue.User, kind session.AttachmentKind, fileID string) error
}

// Conversation maps Telegram updates onto dialogue events.
type Conversation struct {
	engine engine
}

// NewConversation binds handlers to e.
func NewConversation(e engine) *Conversation {
	return &Conversation{engine: e}
}

// HandleText forwards text and reply-keyboard presses.
func (h *Conversation) HandleText(c tele.Context) error {
	return h.engine.OnText(tghelpers.BuildContext(c), userFrom(c), c.Text())
}

// HandleAttachment forwards a photo or document. Photos use the largest size Telegram kept.
func (h *Conversation) HandleAttachment(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	switch {
	case msg.Photo != nil:
		return h.engine.OnAttachment(ctx, userFrom(c), session.KindPhoto, msg.Photo.FileID)
	case msg.Document != nil:
		return h.engine.OnAttachment(ctx, userFrom(c), session.KindDocument, msg.Document.FileID)
	}
	return nil
}

// HandleCallback forwards an inline button press.
func (h *Conversation) HandleCallback(c tele.Context) error {
	return h.engine.OnCallback(tghelpers.BuildContext(c), userFrom(c), callbacks.CallbackKey(c))
}

// Command returns a handler that feeds the bare command into the dialogue,
// so "/start payload" deep links behave like "/start".
func (h *Conversation) Command(cmd string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.engine.OnText(tghelpers.BuildContext(c), userFrom(c), cmd)
	}
}

// UnsupportedMedia answers voice, video and stickers.
func UnsupportedMedia(c tele.Context) error {
	return tghelpers.SendText(c, msgUnsupportedMedia)
}

func userFrom(c tele.Context) dialogue.User {
	u := c.Sender()
	if u == nil {
		return dialogue.User{ChatID: tghelpers.ChatID(c)}
	}
	return dialogue.User{
		ID:       u.ID,
		ChatID:   tghelpers.ChatID(c),
		Username: u.Username,
		FullName: tghelpers.FullName(u),
	}
}

// StatusSource reports runtime figures for /status.
type StatusSource struct {
	SessionBackend string
	CounterBackend string
	ActiveTurns    func() int
	SendErrors     func() uint64
}

// StatusText renders the staff /status reply.
func StatusText(s StatusSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Версия: %s\n", buildinfo.String())
	fmt.Fprintf(&b, "Сессии: %s\n", s.SessionBackend)
	fmt.Fprintf(&b, "Счётчик заявок: %s\n", s.CounterBackend)
	if s.ActiveTurns != nil {
		fmt.Fprintf(&b, "Обрабатывается сейчас: %d\n", s.ActiveTurns())
	}
	if s.SendErrors != nil {
		fmt.Fprintf(&b, "Ошибок отправки: %d", s.SendErrors())
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatusCommand replies with StatusText.
func StatusCommand(s StatusSource) tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, StatusText(s))
	}
}
