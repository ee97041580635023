package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/logger"
)

// updateContextKey names the tele.Context slot holding the per-update context.
const updateContextKey = "intake.ctx"

// NewUpdateContext derives the request context for the update in c and keeps
// it on c for the rest of the handler chain. A rid set earlier by the logging
// middleware is reused.
func NewUpdateContext(c tele.Context) context.Context {
	upd := c.Update()
	userID, chatID := SenderID(c), ChatID(c)

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := logger.WithRID(logger.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(updateContextKey, ctx)
	return ctx
}

// BuildContext returns the context kept on c, deriving it on first use.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(updateContextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return NewUpdateContext(c)
}

// WithHandler tags the update context with the route that is serving it, so
// dialogue and sender logs downstream name the handler.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || logger.HandlerFrom(ctx) == handler {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	c.Set(updateContextKey, ctx)
	return ctx
}
