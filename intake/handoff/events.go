package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/m3rciful/intakebot/core/logger"
)

// DefaultSubject carries submitted requests.
const DefaultSubject = "intake.requests.submitted"

// EventSink publishes delivered requests to NATS JetStream. The record id doubles as the
// message id so a redelivery is deduplicated by the stream.
type EventSink struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewEventSink connects to url and makes sure stream exists for subject.
func NewEventSink(ctx context.Context, url, stream, subject string) (*EventSink, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("intakebot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if stream != "" {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
			Name:     stream,
			Subjects: []string{subject},
			Storage:  jetstream.FileStorage,
		}); err != nil {
			logger.Warn(ctx, component, "nats.stream", slog.String("subject", subject), logger.Err(err))
		}
	}
	logger.Info(ctx, component, "nats.connected", slog.String("subject", subject))
	return &EventSink{nc: nc, js: js, subject: subject}, nil
}

func (e *EventSink) Name() string { return "nats" }

func (e *EventSink) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("event encode: %w", err)
	}
	if _, err := e.js.Publish(ctx, e.subject, data, jetstream.WithMsgID(rec.ID.String())); err != nil {
		return fmt.Errorf("publish %s: %w", e.subject, err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (e *EventSink) Close() error {
	if e.nc == nil {
		return nil
	}
	return e.nc.Drain()
}
