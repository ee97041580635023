package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"
	"github.com/m3rciful/intakebot/intake/dialogue"
	"github.com/m3rciful/intakebot/intake/session"
)

func bareApp() *App {
	return &App{
		cfg:    &Config{},
		locker: session.NewLocker(),
		sender: tgsender.New(tgsender.Options{}),
	}
}

func TestRegistryDeclaresIntakeCommands(t *testing.T) {
	reg := bareApp().Registry(NewConversation(&fakeEngine{}))

	for _, name := range []string{dialogue.StartCommand, dialogue.HelpCommand, dialogue.CancelCommand} {
		_, cmd, ok := reg.LookupCommand(name)
		require.True(t, ok, name)
		assert.False(t, cmd.AdminOnly, name)
	}
	_, status, ok := reg.LookupCommand("status")
	require.True(t, ok)
	assert.True(t, status.AdminOnly)

	menu := reg.ListCommands(true)
	assert.Len(t, menu, 3)

	assert.ElementsMatch(t, []string{
		dialogue.CallbackConfirmNo,
		dialogue.CallbackConfirmYes,
		dialogue.CallbackFlagNo,
		dialogue.CallbackFlagYes,
	}, reg.ListCallbacks())
	assert.NotNil(t, reg.CallbackNotFound())
}

func TestServicesFollowMetricsConfig(t *testing.T) {
	a := bareApp()
	assert.Empty(t, a.Services())

	a.cfg.Metrics.Listen = ":9090"
	a.cfg.Metrics.Path = "/metrics"
	svcs := a.Services()
	require.Len(t, svcs, 1)
	assert.Equal(t, "metrics", svcs[0].Name())
}

func TestTelegramRunOptionsRequiresBootstrap(t *testing.T) {
	_, err := bareApp().TelegramRunOptions()
	assert.Error(t, err)
}
