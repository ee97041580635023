// Package gateway is the outbound messaging contract of the intake flow.
package gateway

import "context"

// Button is either a callback button (Data) or a link button (URL). Reply keyboards use Text only.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard attached to a message. Exactly one of Rows, Inline or Remove is meaningful.
type Keyboard struct {
	// Rows is a reply keyboard, one slice per row.
	Rows [][]string
	// Inline is a single row of inline buttons.
	Inline []Button
	// Remove hides a previously sent reply keyboard.
	Remove bool
}

// Gateway sends messages to users and the staff chat.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) error
}

// Reply builds a reply keyboard with one button per row.
func Reply(labels ...string) *Keyboard {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	return &Keyboard{Rows: rows}
}

// ReplyRows builds a reply keyboard from explicit rows.
func ReplyRows(rows ...[]string) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Inline builds a one-row inline keyboard.
func Inline(buttons ...Button) *Keyboard {
	return &Keyboard{Inline: buttons}
}

// RemoveKeyboard hides the reply keyboard.
func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}
