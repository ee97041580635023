package handoff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/intakebot/intake/gateway"
	"github.com/m3rciful/intakebot/intake/session"
)

// ContactButton is the label of the staff button that opens a chat with the client.
const ContactButton = "💬 Написать клиенту"

// Summary renders the staff message for rec. esc quotes user-supplied text for the parse mode.
func Summary(rec Record, channel string, esc func(string) string) string {
	if esc == nil {
		esc = func(s string) string { return s }
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Новая заявка на консультацию! Номер заявки №%d*\n", rec.Number)
	if channel != "" {
		fmt.Fprintf(&b, "🧪 Канал: %s\n", esc(channel))
	}
	fmt.Fprintf(&b, "👤 Клиент: %s\n", esc(rec.User.FullName))
	handle := "N/A"
	if rec.User.Username != "" {
		handle = "@" + esc(rec.User.Username)
	}
	fmt.Fprintf(&b, "🆔 %d | 📧 %s\n", rec.User.ID, handle)

	kind := rec.CategoryTitle
	if rec.SubCategory != "" {
		kind += " / " + rec.SubCategory
	}
	fmt.Fprintf(&b, "Тип: %s\n\n", esc(kind))

	for _, f := range rec.Answers {
		value := f.Value
		if value == "" {
			value = "—"
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, esc(value))
	}
	for _, f := range rec.Flags {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, esc(f.Value))
	}
	if n := len(rec.Attachments); n > 0 {
		fmt.Fprintf(&b, "📎 Вложения: %d шт.\n", n)
	}
	fmt.Fprintf(&b, "⏱️ Срочность выполнения: %s\n", esc(rec.Urgency))

	if rec.PriceReport != "" {
		b.WriteString("\n💬 *Детали расчёта стоимости:*\n")
		b.WriteString(rec.PriceReport)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ContactKeyboard opens a private chat with the client.
func ContactKeyboard(userID int64) *gateway.Keyboard {
	return gateway.Inline(gateway.Button{Text: ContactButton, URL: "tg://user?id=" + strconv.FormatInt(userID, 10)})
}

// Caption labels an attachment forwarded to the staff chat.
func Caption(number int, kind session.AttachmentKind) string {
	label := "документ"
	if kind == session.KindPhoto {
		label = "фото"
	}
	return fmt.Sprintf("Заявка №%d: %s", number, label)
}
