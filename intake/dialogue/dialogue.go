// Package dialogue runs the per-user intake conversation: service selection, questions,
// attachments, urgency, price confirmation and handoff.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/intake/catalog"
	"github.com/m3rciful/intakebot/intake/gateway"
	"github.com/m3rciful/intakebot/intake/handoff"
	"github.com/m3rciful/intakebot/intake/pricing"
	"github.com/m3rciful/intakebot/intake/session"
)

const component = "intake.dialogue"

// User is the sender of an inbound event.
type User struct {
	ID       int64
	ChatID   int64
	Username string
	FullName string
}

// Counter issues request numbers and never fails.
type Counter interface {
	Next(ctx context.Context) int
}

// Handoff delivers a confirmed request to staff.
type Handoff interface {
	Dispatch(ctx context.Context, rec handoff.Record) (handoff.Result, error)
}

// Observer receives dialogue metrics. *metrics.Recorder satisfies it.
type Observer interface {
	Transition(from, to string)
	Rejected(state string)
	Submitted(category string, delivered bool)
	StoreFailed()
}

type nopObserver struct{}

func (nopObserver) Transition(string, string) {}
func (nopObserver) Rejected(string)           {}
func (nopObserver) Submitted(string, bool)    {}
func (nopObserver) StoreFailed()              {}

// Config wires an Engine. Store, Catalog, Gateway, Counter and Handoff are required.
type Config struct {
	Store    session.Store
	Locker   *session.Locker
	Catalog  *catalog.Catalog
	Gateway  gateway.Gateway
	Pricing  pricing.Engine
	Counter  Counter
	Handoff  Handoff
	Observer Observer
	// Welcome phrases greet the "new request" button; one is picked uniformly.
	Welcome []string
	Now     func() time.Time
	// Pick returns a number in [0, n).
	Pick func(n int) int
}

// Engine is safe for concurrent use; turns of one user are serialized.
type Engine struct {
	cfg Config
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("dialogue: store is required")
	case cfg.Catalog == nil:
		return nil, errors.New("dialogue: catalog is required")
	case cfg.Gateway == nil:
		return nil, errors.New("dialogue: gateway is required")
	case cfg.Counter == nil:
		return nil, errors.New("dialogue: counter is required")
	case cfg.Handoff == nil:
		return nil, errors.New("dialogue: handoff is required")
	}
	if cfg.Locker == nil {
		cfg.Locker = session.NewLocker()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if len(cfg.Welcome) == 0 {
		cfg.Welcome = DefaultWelcome
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pick == nil {
		cfg.Pick = rand.IntN
	}
	return &Engine{cfg: cfg}, nil
}

type outbound struct {
	text string
	kb   *gateway.Keyboard
}

// turn is one inbound event processed against a private copy of the session.
type turn struct {
	e    *Engine
	ctx  context.Context
	user User

	s      *session.Session
	from   session.State
	dirty  bool
	clear  bool
	outbox []outbound
}

func (t *turn) say(text string, kb *gateway.Keyboard) {
	t.outbox = append(t.outbox, outbound{text: text, kb: kb})
}

func (t *turn) moveTo(to session.State) error {
	from := t.s.State
	if err := checkTransition(t.ctx, from, to); err != nil {
		return err
	}
	t.s.State = to
	t.dirty = true
	return nil
}

func (t *turn) category() (catalog.Category, error) {
	cat, ok := t.e.cfg.Catalog.ByID(t.s.Category)
	if !ok {
		return catalog.Category{}, fmt.Errorf("dialogue: unknown category %q in state %s", t.s.Category, t.s.State)
	}
	return cat, nil
}

func (e *Engine) run(ctx context.Context, user User, op string, fn func(*turn) error) error {
	unlock := e.cfg.Locker.Lock(user.ID)
	defer unlock()

	ctx = logger.WithUser(ctx, user.ID)
	start := time.Now()

	current, ok, err := e.cfg.Store.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, session.ErrUnavailable) {
		// the backend answered but the session is unusable; start from idle
		e.cfg.Observer.StoreFailed()
		logger.Warn(ctx, component, "session.discard", slog.String("op", op), logger.Err(err))
		if cerr := e.cfg.Store.Clear(ctx, user.ID); cerr != nil {
			logger.Error(ctx, component, "session.clear", slog.String("op", op), logger.Err(cerr))
		}
		current, ok, err = nil, false, nil
	}
	if err != nil {
		e.cfg.Observer.StoreFailed()
		logger.Error(ctx, component, "session.load", slog.String("op", op), logger.Err(err))
		e.send(ctx, user, []outbound{{text: msgRetry}})
		return fmt.Errorf("load session: %w", err)
	}
	t := &turn{e: e, ctx: ctx, user: user, from: session.StateIdle}
	if ok {
		t.s = current
		t.from = current.State
	}

	if err := fn(t); err != nil {
		logger.Error(ctx, component, "turn.failed",
			slog.String("op", op),
			slog.String("state", string(t.from)),
			logger.Err(err),
		)
		e.send(ctx, user, []outbound{{text: msgRetry}})
		return err
	}

	next := session.StateIdle
	switch {
	case t.clear:
		if ok {
			if err := e.cfg.Store.Clear(ctx, user.ID); err != nil {
				e.cfg.Observer.StoreFailed()
				logger.Error(ctx, component, "session.clear", slog.String("op", op), logger.Err(err))
			}
		}
	case t.s != nil && t.dirty:
		t.s.UpdatedAt = e.cfg.Now()
		if err := e.cfg.Store.Put(ctx, user.ID, t.s); err != nil {
			e.cfg.Observer.StoreFailed()
			logger.Error(ctx, component, "session.save", slog.String("op", op), logger.Err(err))
			e.send(ctx, user, []outbound{{text: msgRetry}})
			return fmt.Errorf("save session: %w", err)
		}
		next = t.s.State
	case t.s != nil:
		next = t.s.State
	}

	if next != t.from {
		e.cfg.Observer.Transition(string(t.from), string(next))
	}
	logger.Debug(ctx, component, "turn.done",
		slog.String("op", op),
		slog.String("state", string(t.from)),
		slog.String("next_state", string(next)),
		slog.Duration("duration", logger.Took(start)),
	)
	return e.send(ctx, user, t.outbox)
}

func (e *Engine) send(ctx context.Context, user User, msgs []outbound) error {
	for _, m := range msgs {
		if err := e.cfg.Gateway.SendText(ctx, user.ChatID, m.text, m.kb); err != nil {
			logger.Warn(ctx, component, "reply.failed", slog.String("status", "fail"), logger.Err(err))
			return fmt.Errorf("reply: %w", err)
		}
	}
	return nil
}

// OnText handles a text message or button press.
func (e *Engine) OnText(ctx context.Context, user User, text string) error {
	return e.run(ctx, user, "text", func(t *turn) error { return t.onText(text) })
}

// OnCallback handles an inline button press. Unknown payloads are ignored.
func (e *Engine) OnCallback(ctx context.Context, user User, data string) error {
	return e.run(ctx, user, "callback", func(t *turn) error { return t.onCallback(data) })
}

// OnAttachment handles a photo or document.
func (e *Engine) OnAttachment(ctx context.Context, user User, kind session.AttachmentKind, fileID string) error {
	return e.run(ctx, user, "attachment", func(t *turn) error { return t.onAttachment(kind, fileID) })
}
