package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"
	"github.com/m3rciful/intakebot/intake/gateway"
)

type sent struct {
	to   tele.Recipient
	what any
	opts []any
}

type fakeMessenger struct {
	calls []sent
	errs  []error
}

func (f *fakeMessenger) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	f.calls = append(f.calls, sent{to: to, what: what, opts: opts})
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &tele.Message{}, nil
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, Markup(nil))
	assert.Nil(t, Markup(&gateway.Keyboard{}))

	rm := Markup(gateway.RemoveKeyboard())
	require.NotNil(t, rm)
	assert.True(t, rm.RemoveKeyboard)

	reply := Markup(gateway.ReplyRows([]string{"Да", "Нет"}, []string{"Отмена"}))
	require.NotNil(t, reply)
	require.Len(t, reply.ReplyKeyboard, 2)
	assert.Len(t, reply.ReplyKeyboard[0], 2)
	assert.Equal(t, "Отмена", reply.ReplyKeyboard[1][0].Text)

	inline := Markup(gateway.Inline(
		gateway.Button{Text: "Да", Data: "confirm_yes"},
		gateway.Button{Text: "Написать", URL: "tg://user?id=7"},
	))
	require.NotNil(t, inline)
	require.Len(t, inline.InlineKeyboard, 1)
	row := inline.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "confirm_yes", row[0].Data)
	assert.Equal(t, "tg://user?id=7", row[1].URL)
}

func TestTelegramGatewaySendText(t *testing.T) {
	api := &fakeMessenger{}
	gw := NewTelegramGateway(api, nil)

	require.NoError(t, gw.SendText(context.Background(), 42, "*Заявка*", gateway.Reply("Отмена")))
	require.Len(t, api.calls, 1)
	call := api.calls[0]
	assert.Equal(t, "42", call.to.Recipient())
	assert.Equal(t, "*Заявка*", call.what)
	require.Len(t, call.opts, 1)
	opts, ok := call.opts[0].(*tele.SendOptions)
	require.True(t, ok)
	assert.Equal(t, tele.ModeMarkdown, opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	assert.Len(t, opts.ReplyMarkup.ReplyKeyboard, 1)
}

func TestTelegramGatewaySendsFiles(t *testing.T) {
	api := &fakeMessenger{}
	gw := NewTelegramGateway(api, nil)
	ctx := context.Background()

	require.NoError(t, gw.SendPhoto(ctx, -100, "photo-id", "Заявка №1001"))
	require.NoError(t, gw.SendDocument(ctx, -100, "doc-id", "Заявка №1001"))
	require.Len(t, api.calls, 2)

	photo, ok := api.calls[0].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "photo-id", photo.FileID)
	assert.Equal(t, "Заявка №1001", photo.Caption)

	doc, ok := api.calls[1].what.(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "doc-id", doc.FileID)
}

func TestTelegramGatewayPermanentError(t *testing.T) {
	api := &fakeMessenger{errs: []error{errors.New("forbidden: bot was blocked by the user")}}
	gw := NewTelegramGateway(api, tgsender.New(tgsender.Options{MaxRetries: 2, RetryBackoff: time.Millisecond}))

	err := gw.SendText(context.Background(), 7, "hi", nil)
	require.Error(t, err)
	assert.Len(t, api.calls, 1)
}
