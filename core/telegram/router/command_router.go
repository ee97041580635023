package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/logger"
	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/middleware"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// StaffChatID gates commands marked AdminOnly.
	StaffChatID   int64
	OnAdminReject tele.HandlerFunc
	// PrivateOnly ignores non-admin commands outside private chats.
	PrivateOnly bool
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Aliases are bound to the same handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	staffOnly := middleware.StaffOnlyMiddleware(middleware.StaffOptions{
		StaffChatID: opts.StaffChatID,
		OnReject:    opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		inner := def.Handler
		skipGroups := opts.PrivateOnly && !def.AdminOnly
		h := func(c tele.Context) error {
			start := time.Now()
			if skipGroups && !isPrivate(c) {
				logHandlerSummary(c, "command."+name, start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, "command."+name, start, "", "", func() error {
				return inner(c)
			})
		}
		if def.AdminOnly {
			h = staffOnly(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			if alias == "" {
				continue
			}
			if alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(logger.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
