package dialogue

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/intake/catalog"
	"github.com/m3rciful/intakebot/intake/gateway"
	"github.com/m3rciful/intakebot/intake/handoff"
	"github.com/m3rciful/intakebot/intake/pricing"
	"github.com/m3rciful/intakebot/intake/session"
	"github.com/m3rciful/intakebot/intake/validate"
)

func (t *turn) onText(raw string) error {
	text := strings.TrimSpace(raw)
	switch text {
	case CancelButton, CancelCommand:
		t.cancel()
		return nil
	case StartCommand, HelpCommand:
		return t.start(msgIntro)
	case NewRequestButton:
		w := t.e.cfg.Welcome
		return t.start(w[t.e.cfg.Pick(len(w))])
	}
	if t.s == nil || t.s.State == session.StateIdle {
		t.say(msgNoSession, newRequestKeyboard())
		return nil
	}

	switch t.s.State {
	case session.StateServiceSelect:
		return t.selectService(text)
	case session.StateSubCategorySelect:
		return t.selectSubCategory(text)
	case session.StateObjectTypeSelect, session.StateAreaInput, session.StateCategoryField:
		return t.answer(text)
	case session.StateCustomObjectType:
		return t.customObjectType(text)
	case session.StateFlagPrompt:
		return t.repeatFlag()
	case session.StateAttachments:
		if text == DoneButton {
			if err := t.moveTo(session.StateUrgencySelect); err != nil {
				return err
			}
			t.say(msgUrgencyPrompt, urgencyKeyboard())
			return nil
		}
		t.say(msgAttachOther, attachmentsKeyboard())
		return nil
	case session.StateUrgencySelect:
		return t.selectUrgency(text)
	case session.StatePriceConfirmation:
		t.say(msgConfirmQuestion, confirmKeyboard())
		return nil
	}
	return nil
}

// cancel discards the session; repeating it is harmless.
func (t *turn) cancel() {
	t.clear = true
	t.say(msgCancelled, newRequestKeyboard())
}

// start opens a fresh session, dropping whatever was in progress.
func (t *turn) start(greeting string) error {
	t.s = session.New(t.e.cfg.Now())
	if err := t.moveTo(session.StateServiceSelect); err != nil {
		return err
	}
	t.say(greeting, servicesKeyboard(t.e.cfg.Catalog))
	return nil
}

func (t *turn) reject(message string, kb *gateway.Keyboard) {
	t.e.cfg.Observer.Rejected(string(t.s.State))
	logger.Debug(t.ctx, component, "input.rejected", slog.String("state", string(t.s.State)))
	t.say(message, kb)
}

func (t *turn) selectService(text string) error {
	cat, ok := t.e.cfg.Catalog.ByButton(text)
	if !ok {
		t.reject(msgUseButtons, servicesKeyboard(t.e.cfg.Catalog))
		return nil
	}
	t.s.Category = cat.ID
	t.dirty = true
	if cat.HasSubCategories() {
		if err := t.moveTo(session.StateSubCategorySelect); err != nil {
			return err
		}
		t.say(cat.SubPrompt, optionsKeyboard(cat.SubCategories))
		return nil
	}
	return t.advance(cat)
}

func (t *turn) selectSubCategory(text string) error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	choice, err := validate.Choice(text, cat.SubCategories)
	if err != nil {
		t.reject(rejectionMessage(err), optionsKeyboard(cat.SubCategories))
		return nil
	}
	t.s.SubCategory = choice
	t.dirty = true
	return t.advance(cat)
}

// answer validates input for the question under the cursor.
func (t *turn) answer(raw string) error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	q, ok := cat.Question(t.s.Cursor)
	if !ok {
		return errors.New("dialogue: cursor past the last question")
	}
	if q.Custom != "" && raw == q.Custom {
		if err := t.moveTo(session.StateCustomObjectType); err != nil {
			return err
		}
		t.say(msgCustomObject, cancelKeyboard())
		return nil
	}
	value, err := validate.Answer(q.Kind, raw, q.Options)
	if err != nil {
		t.reject(rejectionMessage(err), questionKeyboard(q))
		return nil
	}
	return t.store(cat, q, value)
}

func (t *turn) customObjectType(raw string) error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	q, ok := cat.Question(t.s.Cursor)
	if !ok {
		return errors.New("dialogue: cursor past the last question")
	}
	value := q.Custom
	if text := validate.Text(raw); text != "" {
		value += " (" + text + ")"
	}
	return t.store(cat, q, value)
}

// store appends the answer, then asks the side flag bound to q or moves on.
func (t *turn) store(cat catalog.Category, q catalog.Question, value string) error {
	t.s.Answers = append(t.s.Answers, value)
	t.s.Cursor++
	t.dirty = true

	if f, ok := cat.FlagAfter(q.ID); ok && !t.s.HasFlag(f.Name) {
		if err := t.moveTo(session.StateFlagPrompt); err != nil {
			return err
		}
		t.s.PendingFlag = f.Name
		t.say(f.Prompt, flagKeyboard(f))
		return nil
	}
	return t.advance(cat)
}

// advance asks the question under the cursor, or opens attachments when none are left.
func (t *turn) advance(cat catalog.Category) error {
	q, ok := cat.Question(t.s.Cursor)
	if !ok {
		if err := t.moveTo(session.StateAttachments); err != nil {
			return err
		}
		t.say(msgAttachPrompt, attachmentsKeyboard())
		return nil
	}
	if err := t.moveTo(q.State()); err != nil {
		return err
	}
	t.say(q.Prompt, questionKeyboard(q))
	return nil
}

func (t *turn) repeatFlag() error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	f, ok := cat.Flag(t.s.PendingFlag)
	if !ok {
		return errors.New("dialogue: flag prompt without a pending flag")
	}
	t.reject(msgFlagUseButtons, nil)
	t.say(f.Prompt, flagKeyboard(f))
	return nil
}

func (t *turn) selectUrgency(text string) error {
	if _, ok := pricing.UrgencyFactor(text); !ok {
		t.reject(msgUrgencyInvalid, urgencyKeyboard())
		return nil
	}
	cat, err := t.category()
	if err != nil {
		return err
	}
	t.s.Urgency = text
	report, _, err := t.e.cfg.Pricing.Report(cat.Pricing, t.pricingInput(cat))
	if err != nil {
		attrs := []slog.Attr{
			slog.String("state", string(t.s.State)),
			slog.String("category", cat.ID),
			logger.Err(err),
		}
		var fe *pricing.FieldError
		if errors.As(err, &fe) {
			attrs = append(attrs, slog.String("question", fe.Field))
		}
		logger.Warn(t.ctx, "intake.pricing", "quote.fallback", attrs...)
	}
	t.s.PriceReport = report
	if err := t.moveTo(session.StatePriceConfirmation); err != nil {
		return err
	}
	t.say(report, cancelKeyboard())
	t.say(msgConfirmQuestion, confirmKeyboard())
	return nil
}

func (t *turn) pricingInput(cat catalog.Category) pricing.Input {
	return pricing.Input{
		SubCategory: t.s.SubCategory,
		Fields:      cat.Fields(t.s.Answers),
		Flags:       t.s.Flags,
		Urgency:     t.s.Urgency,
	}
}

func (t *turn) onCallback(data string) error {
	if t.s == nil {
		logger.Debug(t.ctx, component, "callback.ignored", slog.String("cb_key", data))
		return nil
	}
	switch {
	case t.s.State == session.StateFlagPrompt && (data == CallbackFlagYes || data == CallbackFlagNo):
		return t.answerFlag(data == CallbackFlagYes)
	case t.s.State == session.StatePriceConfirmation && data == CallbackConfirmYes:
		return t.submit()
	case t.s.State == session.StatePriceConfirmation && data == CallbackConfirmNo:
		t.cancel()
		return nil
	}
	logger.Debug(t.ctx, component, "callback.ignored",
		slog.String("cb_key", data),
		slog.String("state", string(t.s.State)),
	)
	return nil
}

func (t *turn) answerFlag(v bool) error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	if _, ok := cat.Flag(t.s.PendingFlag); !ok {
		return errors.New("dialogue: flag answer without a pending flag")
	}
	t.s.SetFlag(t.s.PendingFlag, v)
	t.s.PendingFlag = ""
	t.dirty = true
	return t.advance(cat)
}

func (t *turn) onAttachment(kind session.AttachmentKind, fileID string) error {
	if t.s == nil || t.s.State != session.StateAttachments {
		t.say(msgAttachNotExpect, nil)
		return nil
	}
	if !t.s.AddAttachment(session.Attachment{Kind: kind, FileID: fileID}) {
		t.say(msgAttachLimit, attachmentsKeyboard())
		return nil
	}
	t.dirty = true
	t.say(msgAttachAdded(len(t.s.Attachments)), attachmentsKeyboard())
	return nil
}

// submit issues a number, hands the request off and always ends the session.
func (t *turn) submit() error {
	cat, err := t.category()
	if err != nil {
		return err
	}
	rec := t.record(cat)

	res, dispatchErr := t.e.cfg.Handoff.Dispatch(t.ctx, rec)
	t.e.cfg.Observer.Submitted(cat.ID, res.SummaryDelivered)
	if err := t.moveTo(session.StateIdle); err != nil {
		return err
	}
	t.clear = true

	if dispatchErr != nil || !res.SummaryDelivered {
		logger.Error(t.ctx, component, "request.undelivered",
			slog.String("category", cat.ID),
			slog.Int("request_no", rec.Number),
			logger.Err(dispatchErr),
		)
		t.say(msgSubmitUndelivered, newRequestKeyboard())
		return nil
	}
	logger.Info(t.ctx, component, "request.submitted",
		slog.String("outcome", "submitted"),
		slog.String("category", cat.ID),
		slog.Int("request_no", rec.Number),
		slog.String("request_id", rec.ID.String()),
		slog.Int("attachments", len(rec.Attachments)),
	)
	t.say(msgSubmitted(rec.Number), newRequestKeyboard())
	return nil
}

func (t *turn) record(cat catalog.Category) handoff.Record {
	number := t.e.cfg.Counter.Next(t.ctx)
	rec := handoff.NewRecord(number, handoff.User{
		ID:       t.user.ID,
		Username: t.user.Username,
		FullName: t.user.FullName,
	}, t.e.cfg.Now())
	rec.Category = cat.ID
	rec.CategoryTitle = cat.Title
	rec.SubCategory = t.s.SubCategory
	for i, a := range t.s.Answers {
		q, ok := cat.Question(i)
		if !ok {
			break
		}
		if a != "" && q.Unit != "" {
			a += " " + q.Unit
		}
		rec.Answers = append(rec.Answers, handoff.Field{Label: q.Label, Value: a})
	}
	for _, f := range cat.Flags {
		if !t.s.HasFlag(f.Name) {
			continue
		}
		value := f.NoText
		if t.s.Flags[f.Name] {
			value = f.YesText
		}
		rec.Flags = append(rec.Flags, handoff.Field{Label: f.Summary, Value: value})
	}
	rec.Attachments = append(rec.Attachments, t.s.Attachments...)
	rec.Urgency = t.s.Urgency
	rec.PriceReport = t.s.PriceReport
	if q, err := t.e.cfg.Pricing.Quote(cat.Pricing, t.pricingInput(cat)); err == nil {
		rec.Total = q.Final
	}
	return rec
}

func rejectionMessage(err error) string {
	var r *validate.Rejection
	if errors.As(err, &r) {
		return r.Message
	}
	return msgUseButtons
}
