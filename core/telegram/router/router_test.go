package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/commands"
)

const staffChat int64 = -100500

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func message(id int, userID int64, chat *tele.Chat, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   chat,
			Text:   text,
		},
	}
}

func private(userID int64) *tele.Chat { return &tele.Chat{ID: userID, Type: tele.ChatPrivate} }

func group(id int64) *tele.Chat { return &tele.Chat{ID: id, Type: tele.ChatSuperGroup} }

func routeFor(t *testing.T, routes []tg.Route, endpoint any) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	require.FailNow(t, "route not found", "%v", endpoint)
	return nil
}

type countingConversation struct {
	texts, attachments int
}

func (c *countingConversation) HandleText(tele.Context) error {
	c.texts++
	return nil
}

func (c *countingConversation) HandleAttachment(tele.Context) error {
	c.attachments++
	return nil
}

func newRegistry(starts, stats *int) *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Description: "Новая заявка",
		Handler:     func(tele.Context) error { *starts++; return nil },
		Aliases:     []string{"new"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Description: "Статистика",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { *stats++; return nil },
	})
	return reg
}

func TestPrivateOnlyCommandsSkipGroups(t *testing.T) {
	b := offlineBot(t)
	var starts, stats int
	routes := CommandRoutes(newRegistry(&starts, &stats), CommandRouteOptions{
		StaffChatID: staffChat,
		PrivateOnly: true,
	})
	start := routeFor(t, routes, "/start")
	alias := routeFor(t, routes, "/new")
	adminStats := routeFor(t, routes, "/stats")

	require.NoError(t, start(b.NewContext(message(1, 7, group(staffChat), "/start"))))
	require.NoError(t, alias(b.NewContext(message(2, 7, group(-42), "/new"))))
	assert.Zero(t, starts)

	require.NoError(t, start(b.NewContext(message(3, 7, private(7), "/start"))))
	require.NoError(t, alias(b.NewContext(message(4, 7, private(7), "/new"))))
	assert.Equal(t, 2, starts)

	require.NoError(t, adminStats(b.NewContext(message(5, 7, group(staffChat), "/stats"))))
	require.NoError(t, adminStats(b.NewContext(message(6, 7, private(7), "/stats"))))
	assert.Equal(t, 1, stats)
}

func TestCommandsRunEverywhereWithoutPrivateOnly(t *testing.T) {
	b := offlineBot(t)
	var starts, stats int
	routes := CommandRoutes(newRegistry(&starts, &stats), CommandRouteOptions{StaffChatID: staffChat})

	require.NoError(t, routeFor(t, routes, "/start")(b.NewContext(message(1, 7, group(-42), "/start"))))
	assert.Equal(t, 1, starts)
}

func TestTextRoutesPrivateOnly(t *testing.T) {
	b := offlineBot(t)
	var starts, stats int
	conv := &countingConversation{}
	routes := TextRoutes(conv, newRegistry(&starts, &stats), TextOptions{PrivateOnly: true})
	text := routeFor(t, routes, tele.OnText)

	require.NoError(t, text(b.NewContext(message(1, 7, group(staffChat), "75"))))
	assert.Zero(t, conv.texts)

	require.NoError(t, text(b.NewContext(message(2, 7, private(7), "75"))))
	assert.Equal(t, 1, conv.texts)

	// text naming a user command runs it; admin commands fall through to the conversation
	require.NoError(t, text(b.NewContext(message(3, 7, private(7), "new"))))
	assert.Equal(t, 1, starts)
	require.NoError(t, text(b.NewContext(message(4, 7, private(7), "/stats"))))
	assert.Zero(t, stats)
	assert.Equal(t, 2, conv.texts)

	photo := routeFor(t, routes, tele.OnPhoto)
	require.NoError(t, photo(b.NewContext(message(5, 7, group(-42), ""))))
	require.NoError(t, photo(b.NewContext(message(6, 7, private(7), ""))))
	assert.Equal(t, 1, conv.attachments)
}

type codedError struct{}

func (codedError) Error() string { return "quota" }
func (codedError) Code() string  { return "rate limited" }

type plainError struct{}

func (*plainError) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Empty(t, deriveErrorCode(nil))
	assert.Equal(t, "RATE_LIMITED", deriveErrorCode(codedError{}))
	assert.Equal(t, "PLAINERROR", deriveErrorCode(&plainError{}))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/Start"))
	assert.Equal(t, "new_request", normalizeHandlerName(" new request "))
	assert.Equal(t, "unknown", normalizeHandlerName(" "))
}
