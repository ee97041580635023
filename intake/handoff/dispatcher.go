package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/intake/gateway"
	"github.com/m3rciful/intakebot/intake/session"
)

const component = "intake.handoff"

// ErrSummaryUndelivered means the staff never saw the request.
var ErrSummaryUndelivered = errors.New("handoff: staff summary not delivered")

// Sink receives a copy of every delivered request. Sink failures never affect the user.
type Sink interface {
	Name() string
	Save(ctx context.Context, rec Record) error
}

// Observer counts delivery problems.
type Observer interface {
	HandoffFailed(step string)
}

// Result describes what reached the staff chat.
type Result struct {
	SummaryDelivered  bool
	AttachmentsSent   int
	AttachmentsFailed int
}

// Dispatcher forwards confirmed requests to the staff chat.
type Dispatcher struct {
	gw        gateway.Gateway
	staffChat int64
	channel   string
	escape    func(string) string
	sinks     []Sink
	observer  Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithChannel sets the channel tag line of the summary.
func WithChannel(tag string) Option {
	return func(d *Dispatcher) { d.channel = tag }
}

// WithEscape sets the quoting function for user-supplied text.
func WithEscape(fn func(string) string) Option {
	return func(d *Dispatcher) { d.escape = fn }
}

// WithSinks appends archive sinks.
func WithSinks(sinks ...Sink) Option {
	return func(d *Dispatcher) {
		for _, s := range sinks {
			if s != nil {
				d.sinks = append(d.sinks, s)
			}
		}
	}
}

// WithObserver reports failures to o.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher sends to staffChat through gw.
func NewDispatcher(gw gateway.Gateway, staffChat int64, opts ...Option) *Dispatcher {
	d := &Dispatcher{gw: gw, staffChat: staffChat}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the summary, then each attachment as its own message. Attachment failures are
// logged and counted; a failed summary skips attachments and sinks and returns ErrSummaryUndelivered.
func (d *Dispatcher) Dispatch(ctx context.Context, rec Record) (Result, error) {
	var res Result
	base := []slog.Attr{slog.Int("request_no", rec.Number), slog.String("request_id", rec.ID.String())}

	text := Summary(rec, d.channel, d.escape)
	if err := d.gw.SendText(ctx, d.staffChat, text, ContactKeyboard(rec.User.ID)); err != nil {
		d.failed("summary")
		logger.Error(ctx, component, "summary.failed", append(base, slog.String("status", "fail"), logger.Err(err))...)
		return res, fmt.Errorf("%w: %w", ErrSummaryUndelivered, err)
	}
	res.SummaryDelivered = true

	for i, a := range rec.Attachments {
		caption := Caption(rec.Number, a.Kind)
		var err error
		if a.Kind == session.KindPhoto {
			err = d.gw.SendPhoto(ctx, d.staffChat, a.FileID, caption)
		} else {
			err = d.gw.SendDocument(ctx, d.staffChat, a.FileID, caption)
		}
		if err != nil {
			res.AttachmentsFailed++
			d.failed("attachment")
			logger.Warn(ctx, component, "attachment.failed", append(base,
				slog.String("status", "fail"),
				slog.Int("count", i+1),
				slog.String("kind", string(a.Kind)),
				logger.Err(err),
			)...)
			continue
		}
		res.AttachmentsSent++
	}

	for _, s := range d.sinks {
		if err := s.Save(ctx, rec); err != nil {
			d.failed(s.Name())
			logger.Warn(ctx, component, "sink.failed", append(base, slog.String("driver", s.Name()), logger.Err(err))...)
		}
	}

	logger.Info(ctx, component, "handoff.done", append(base,
		slog.String("status", "ok"),
		slog.Int("attachments", res.AttachmentsSent),
		slog.Int("attachments_failed", res.AttachmentsFailed),
	)...)
	return res, nil
}

func (d *Dispatcher) failed(step string) {
	if d.observer != nil {
		d.observer.HandoffFailed(step)
	}
}
