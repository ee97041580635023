package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"Жилое", "Коммерческое"}, []string{"Отмена заявки"})
	require.Len(t, m.ReplyKeyboard, 2)
	assert.True(t, m.ResizeKeyboard)
	assert.Equal(t, "Коммерческое", m.ReplyKeyboard[0][1].Text)
	assert.Equal(t, "Отмена заявки", m.ReplyKeyboard[1][0].Text)
}

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows([]InlineBtn{
		{Text: "Да", Data: "flag_yes"},
		{Text: "💬 Написать клиенту", URL: "tg://user?id=7"},
	})
	require.Len(t, m.InlineKeyboard, 1)
	row := m.InlineKeyboard[0]
	assert.Equal(t, "flag_yes", row[0].Data)
	assert.Empty(t, row[0].Unique)
	assert.Equal(t, "tg://user?id=7", row[1].URL)
	assert.Empty(t, row[1].Data)
}

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{{Text: "a", Data: "a"}, {Text: "b", Data: "b"}, {Text: "c", Data: "c"}}
	m := InlineButtonsNPerRow(btns, 2)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Len(t, m.InlineKeyboard[0], 2)
	assert.Len(t, m.InlineKeyboard[1], 1)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
