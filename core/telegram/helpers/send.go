package helpers

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/telegram/sender"
)

var globalSender atomic.Pointer[sender.Sender]

// SetSender wires the retrying sender used by helper functions; nil sends directly.
func SetSender(s *sender.Sender) {
	globalSender.Store(s)
}

func send(c tele.Context, action, endpoint string, run func() error) error {
	s := globalSender.Load()
	if s == nil {
		return run()
	}
	return s.Do(BuildContext(c), action, endpoint, run)
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return send(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}
