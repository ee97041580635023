package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/logger"
)

// StaffOptions defines how staff-only checks should behave.
type StaffOptions struct {
	// StaffChatID is the staff group, or the id of a single staff user.
	StaffChatID int64
	OnReject    tele.HandlerFunc
}

// IsStaff reports whether the update comes from the staff chat or the staff user.
func IsStaff(c tele.Context, staffChatID int64) bool {
	if staffChatID == 0 {
		return false
	}
	if chat := c.Chat(); chat != nil && chat.ID == staffChatID {
		return true
	}
	if user := c.Sender(); user != nil && user.ID == staffChatID {
		return true
	}
	return false
}

// StaffOnlyMiddleware lets only staff invoke downstream handlers.
func StaffOnlyMiddleware(opts StaffOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if IsStaff(c, opts.StaffChatID) {
				return next(c)
			}
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			logger.Warn(logger.Background(), "tg", "access.denied",
				slog.String("status", "rejected"),
				slog.Int64("user_id", userID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
