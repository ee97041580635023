package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/middleware"
)

// Conversation consumes user input that is not a registered command.
type Conversation interface {
	HandleText(c tele.Context) error
	HandleAttachment(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	// PrivateOnly drops updates from groups and channels, such as the staff chat.
	PrivateOnly bool
	// UnknownMedia answers media the conversation does not accept (voice, video, stickers).
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds handlers routing text, photos and documents to conv.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	skip := func(c tele.Context) bool {
		return opts.PrivateOnly && !isPrivate(c)
	}

	handler := func(c tele.Context) error {
		start := time.Now()
		if skip(c) {
			logHandlerSummary(c, "text", start, "skip", "ok", nil)
			return nil
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				name := "command." + normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if conv != nil {
			return handleWithSummary(c, "conversation.text", start, "", "", func() error {
				return conv.HandleText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	attachment := func(c tele.Context) error {
		start := time.Now()
		if skip(c) || conv == nil {
			logHandlerSummary(c, "attachment", start, "skip", "ok", nil)
			return nil
		}
		return handleWithSummary(c, "conversation.attachment", start, "", "", func() error {
			return conv.HandleAttachment(c)
		})
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(handler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(attachment)},
		{Endpoint: tele.OnDocument, Handler: wrap(attachment)},
	}

	if opts.UnknownMedia != nil {
		media := func(c tele.Context) error {
			start := time.Now()
			if skip(c) {
				logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, "unexpected_media", start, "", "", func() error {
				return opts.UnknownMedia(c)
			})
		}
		for _, ep := range []string{tele.OnVoice, tele.OnVideo, tele.OnAudio, tele.OnSticker, tele.OnVideoNote} {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: wrap(media)})
		}
	}

	return routes
}

func isPrivate(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate
}
