package handoff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/intakebot/intake/gateway/gatewaytest"
	"github.com/m3rciful/intakebot/intake/session"
)

const staff int64 = -100500

type countingObserver struct{ steps []string }

func (o *countingObserver) HandoffFailed(step string) { o.steps = append(o.steps, step) }

type memorySink struct {
	saved []Record
	err   error
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Save(_ context.Context, rec Record) error {
	m.saved = append(m.saved, rec)
	return m.err
}

func sampleRecord() Record {
	rec := NewRecord(1042, User{ID: 77, Username: "volt_fan", FullName: "Иван Петров"}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	rec.Category = "full"
	rec.CategoryTitle = "Полная консультация"
	rec.Answers = []Field{{Label: "🏢 Тип объекта", Value: "Жилое"}, {Label: "📏 Площадь", Value: "75"}}
	rec.Flags = []Field{{Label: "📐 Схема монтажа", Value: "не требуется"}}
	rec.Attachments = []session.Attachment{
		{Kind: session.KindPhoto, FileID: "p1"},
		{Kind: session.KindDocument, FileID: "d1"},
	}
	rec.Urgency = "Стандартно 7 дней"
	rec.PriceReport = "🔧 *Предварительный расчёт:*"
	return rec
}

func TestSummaryContents(t *testing.T) {
	esc := func(s string) string { return strings.ReplaceAll(s, "_", `\_`) }
	text := Summary(sampleRecord(), "VoltHome (Бета)", esc)

	for _, want := range []string{
		"📋 *Новая заявка на консультацию! Номер заявки №1042*",
		"🧪 Канал: VoltHome (Бета)",
		"👤 Клиент: Иван Петров",
		`🆔 77 | 📧 @volt\_fan`,
		"Тип: Полная консультация",
		"⏱️ Срочность выполнения: Стандартно 7 дней",
		"📏 Площадь: 75",
		"📐 Схема монтажа: не требуется",
		"📎 Вложения: 2 шт.",
		"💬 *Детали расчёта стоимости:*",
	} {
		assert.Contains(t, text, want)
	}
}

func TestSummarySectionOrder(t *testing.T) {
	text := Summary(sampleRecord(), "", nil)
	order := []string{
		"Тип: Полная консультация",
		"📏 Площадь: 75",
		"📐 Схема монтажа: не требуется",
		"📎 Вложения: 2 шт.",
		"⏱️ Срочность выполнения: Стандартно 7 дней",
		"💬 *Детали расчёта стоимости:*",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(text, want)
		require.GreaterOrEqual(t, i, 0, "missing %q", want)
		assert.Greater(t, i, last, "%q is out of order", want)
		last = i
	}
}

func TestSummaryWithoutUsername(t *testing.T) {
	rec := sampleRecord()
	rec.User.Username = ""
	rec.SubCategory = "Схема щита"
	text := Summary(rec, "", nil)
	assert.Contains(t, text, "📧 N/A")
	assert.Contains(t, text, "Тип: Полная консультация / Схема щита")
	assert.NotContains(t, text, "Канал")
}

func TestDispatchSendsSummaryThenAttachments(t *testing.T) {
	gw := &gatewaytest.Recorder{}
	sink := &memorySink{}
	d := NewDispatcher(gw, staff, WithChannel("VoltHome (Бета)"), WithSinks(sink))

	res, err := d.Dispatch(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, Result{SummaryDelivered: true, AttachmentsSent: 2}, res)

	sent := gw.Sent(staff)
	require.Len(t, sent, 3)
	assert.Equal(t, gatewaytest.Text, sent[0].Kind)
	require.NotNil(t, sent[0].Keyboard)
	require.Len(t, sent[0].Keyboard.Inline, 1)
	assert.Equal(t, "tg://user?id=77", sent[0].Keyboard.Inline[0].URL)
	assert.Equal(t, ContactButton, sent[0].Keyboard.Inline[0].Text)

	assert.Equal(t, gatewaytest.Photo, sent[1].Kind)
	assert.Equal(t, "Заявка №1042: фото", sent[1].Text)
	assert.Equal(t, gatewaytest.Document, sent[2].Kind)
	assert.Equal(t, "Заявка №1042: документ", sent[2].Text)
	assert.Len(t, sink.saved, 1)
}

func TestDispatchContinuesPastAttachmentFailure(t *testing.T) {
	gw := &gatewaytest.Recorder{}
	gw.FailChat(staff, gatewaytest.Photo)
	obs := &countingObserver{}
	d := NewDispatcher(gw, staff, WithObserver(obs))

	res, err := d.Dispatch(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.True(t, res.SummaryDelivered)
	assert.Equal(t, 1, res.AttachmentsSent)
	assert.Equal(t, 1, res.AttachmentsFailed)
	assert.Equal(t, []string{"attachment"}, obs.steps)
}

func TestDispatchSummaryFailureSkipsTheRest(t *testing.T) {
	gw := &gatewaytest.Recorder{}
	gw.FailChat(staff, gatewaytest.Text)
	sink := &memorySink{}
	obs := &countingObserver{}
	d := NewDispatcher(gw, staff, WithSinks(sink), WithObserver(obs))

	res, err := d.Dispatch(context.Background(), sampleRecord())
	require.ErrorIs(t, err, ErrSummaryUndelivered)
	assert.False(t, res.SummaryDelivered)
	assert.Equal(t, 1, gw.Attempts())
	assert.Empty(t, sink.saved)
	assert.Equal(t, []string{"summary"}, obs.steps)
}

func TestSinkFailureIsNotFatal(t *testing.T) {
	gw := &gatewaytest.Recorder{}
	obs := &countingObserver{}
	d := NewDispatcher(gw, staff, WithSinks(&memorySink{err: errors.New("db down")}), WithObserver(obs))

	res, err := d.Dispatch(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.True(t, res.SummaryDelivered)
	assert.Equal(t, []string{"memory"}, obs.steps)
}
