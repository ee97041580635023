// Package app wires the VoltHome intake bot: configuration, storage backends,
// the dialogue engine and the Telegram runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/intakebot/core/bootstrap"
	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/metrics"
	coretelegram "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/commands"
	"github.com/m3rciful/intakebot/core/telegram/format"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/core/telegram/router"
	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"
	"github.com/m3rciful/intakebot/intake/catalog"
	"github.com/m3rciful/intakebot/intake/counter"
	"github.com/m3rciful/intakebot/intake/dialogue"
	"github.com/m3rciful/intakebot/intake/handoff"
	"github.com/m3rciful/intakebot/intake/pricing"
	"github.com/m3rciful/intakebot/intake/session"
)

const msgRateLimited = "⏳ Слишком много сообщений подряд. Подождите пару секунд."

// App is a bootstrapped bot.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	metrics  *metrics.Recorder
	sender   *tgsender.Sender
	bot      *tele.Bot
	store    session.Store
	locker   *session.Locker
	engine   *dialogue.Engine
	events   *handoff.EventSink
	registry *coretelegram.Registry
}

// Bootstrap opens configured backends and assembles the dialogue engine.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
		Redis:    cfg.Redis,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, infra: infra, metrics: metrics.NewRecorder(), locker: session.NewLocker()}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info(ctx, "app", "bootstrap",
		slog.String("session", cfg.Session.Backend),
		slog.String("counter", cfg.Counter.Backend),
		slog.Bool("archive", infra.DB != nil),
		slog.Bool("events", a.events != nil),
		slog.Bool("promo", cfg.Intake.Promo.Enabled),
	)
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg
	a.sender = tgsender.New(tgsender.Options{
		MaxRetries:   cfg.Sender.MaxRetries,
		RetryBackoff: cfg.Sender.RetryBackoff,
		MaxDuration:  cfg.Sender.MaxDuration,
		OnFailure:    a.metrics.SendFailed,
	})

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.store = store

	source, err := a.openCounter()
	if err != nil {
		return err
	}
	issuer := counter.NewIssuer(source, cfg.Counter.Backend, a.metrics.CounterFallback)

	bot, err := coretelegram.NewBot(&cfg.Config)
	if err != nil {
		return err
	}
	a.bot = bot
	gw := NewTelegramGateway(bot, a.sender)

	sinks, err := a.openSinks(ctx)
	if err != nil {
		return err
	}
	disp := handoff.NewDispatcher(gw, cfg.Telegram.StaffChatID,
		handoff.WithChannel(cfg.Intake.Channel),
		handoff.WithEscape(format.EscapeV1),
		handoff.WithSinks(sinks...),
		handoff.WithObserver(a.metrics),
	)

	a.engine, err = dialogue.New(dialogue.Config{
		Store:   a.store,
		Locker:  a.locker,
		Catalog: catalog.Default(),
		Gateway: gw,
		Pricing: pricing.Engine{
			Promo:  pricing.Promo{Enabled: cfg.Intake.Promo.Enabled, Fraction: cfg.Intake.Promo.Fraction},
			Escape: format.EscapeV1,
		},
		Counter:  issuer,
		Handoff:  disp,
		Observer: a.metrics,
		Welcome:  cfg.Intake.Welcome,
	})
	return err
}

func (a *App) openStore() (session.Store, error) {
	cfg := a.cfg.Session
	switch cfg.Backend {
	case BackendRedis:
		if a.infra.Redis == nil {
			return nil, errors.New("app: redis session store requires a redis connection")
		}
		return session.NewRedisStore(a.infra.Redis, cfg.TTL), nil
	default:
		return session.NewMemoryStore(cfg.TTL, cfg.CleanupInterval), nil
	}
}

func (a *App) openCounter() (counter.Source, error) {
	cfg := a.cfg.Counter
	switch cfg.Backend {
	case BackendPostgres:
		if a.infra.DB == nil {
			return nil, errors.New("app: postgres counter requires a database connection")
		}
		return counter.NewPostgresSource(a.infra.DB), nil
	case BackendRedis:
		if a.infra.Redis == nil {
			return nil, errors.New("app: redis counter requires a redis connection")
		}
		return counter.NewRedisSource(a.infra.Redis, cfg.RedisKey), nil
	default:
		src, err := counter.NewFileSource(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("app: counter file: %w", err)
		}
		return src, nil
	}
}

func (a *App) openSinks(ctx context.Context) ([]handoff.Sink, error) {
	var sinks []handoff.Sink
	if a.infra.DB != nil {
		sinks = append(sinks, handoff.NewArchiveSink(a.infra.DB))
	}
	if ev := a.cfg.Events; ev.NATSURL != "" {
		sink, err := handoff.NewEventSink(ctx, ev.NATSURL, ev.Stream, ev.Subject)
		if err != nil {
			return nil, fmt.Errorf("app: events: %w", err)
		}
		a.events = sink
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// Registry declares commands and callbacks for conv.
func (a *App) Registry(conv *Conversation) *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	// stale buttons from finished requests are answered silently
	reg.SetCallbackNotFound(func(tele.Context) error { return nil })
	reg.RegisterCommand(dialogue.StartCommand, commands.Command{
		Handler:     conv.Command(dialogue.StartCommand),
		Description: "Новая заявка на консультацию",
	})
	reg.RegisterCommand(dialogue.HelpCommand, commands.Command{
		Handler:     conv.Command(dialogue.HelpCommand),
		Description: "Как оформить заявку",
	})
	reg.RegisterCommand(dialogue.CancelCommand, commands.Command{
		Handler:     conv.Command(dialogue.CancelCommand),
		Description: "Отменить текущую заявку",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler: StatusCommand(StatusSource{
			SessionBackend: a.cfg.Session.Backend,
			CounterBackend: a.cfg.Counter.Backend,
			ActiveTurns:    a.locker.Held,
			SendErrors:     a.sender.ErrorCount,
		}),
		Description: "Состояние бота",
		AdminOnly:   true,
	})
	for _, key := range []string{
		dialogue.CallbackFlagYes,
		dialogue.CallbackFlagNo,
		dialogue.CallbackConfirmYes,
		dialogue.CallbackConfirmNo,
	} {
		_ = reg.RegisterCallback(key, conv.HandleCallback)
	}
	return reg
}

// TelegramRunOptions assembles the Telegram runtime around the dialogue engine.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a.engine == nil {
		return coretelegram.RunOptions{}, errors.New("app: not bootstrapped")
	}
	conv := NewConversation(a.engine)
	a.registry = a.Registry(conv)
	core := &a.cfg.Config

	onLimited := func(c tele.Context) error { return tghelpers.SendText(c, msgRateLimited) }

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Bot:         a.bot,
		Sender:      a.sender,
		Middlewares: coretelegram.DefaultMiddlewares(core, onLimited, a.metrics),
		Routes: func(rt coretelegram.Runtime) []coretelegram.Route {
			routes := router.CommandRoutes(rt.Registry, router.CommandRouteOptions{
				StaffChatID: core.Telegram.StaffChatID,
				PrivateOnly: true,
			})
			routes = append(routes, router.CallbackRoute(rt.Registry, router.CallbackOptions{}))
			return append(routes, router.TextRoutes(conv, rt.Registry, router.TextOptions{
				PrivateOnly:  true,
				UnknownMedia: UnsupportedMedia,
			})...)
		},
		OnStart: func(context.Context, coretelegram.Runtime) error {
			tghelpers.SetSender(a.sender)
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			tghelpers.SetSender(nil)
			return nil
		},
	}, nil
}

// Services returns side services: the metrics endpoint when configured.
func (a *App) Services() []bootstrap.Service {
	m := a.cfg.Metrics
	if m.Listen == "" {
		return nil
	}
	return []bootstrap.Service{bootstrap.ServiceFunc{
		ID: "metrics",
		Fn: func(ctx context.Context) error { return a.metrics.Serve(ctx, m.Listen, m.Path) },
	}}
}

// Close releases stores, event connections and database handles.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	errs = append(errs, a.infra.Close())
	return errors.Join(errs...)
}
