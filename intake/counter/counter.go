// Package counter issues sequential request numbers.
package counter

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/m3rciful/intakebot/core/logger"
)

// Source yields strictly increasing positive numbers.
type Source interface {
	Next(ctx context.Context) (int, error)
}

// Fallback range for numbers issued while the source is failing.
const (
	FallbackMin = 1000
	FallbackMax = 9999
)

// Issuer never fails: when the source errors it hands out a random number from
// [FallbackMin, FallbackMax] and reports the fallback.
type Issuer struct {
	source     Source
	driver     string
	onFallback func()
	random     func() int
}

// NewIssuer wraps source; driver names it in logs and onFallback may be nil.
func NewIssuer(source Source, driver string, onFallback func()) *Issuer {
	return &Issuer{
		source:     source,
		driver:     driver,
		onFallback: onFallback,
		random:     func() int { return FallbackMin + rand.IntN(FallbackMax-FallbackMin+1) },
	}
}

// Next returns the next request number.
func (i *Issuer) Next(ctx context.Context) int {
	n, err := i.source.Next(ctx)
	if err == nil && n > 0 {
		logger.Debug(ctx, "intake.counter", "counter.issued",
			slog.String("driver", i.driver),
			slog.Int("request_no", n),
		)
		return n
	}
	fallback := i.random()
	attrs := []slog.Attr{
		slog.String("driver", i.driver),
		slog.Int("request_no", fallback),
		slog.String("status", "fail"),
	}
	if err != nil {
		attrs = append(attrs, logger.Err(err))
	} else {
		attrs = append(attrs, slog.Int("count", n))
	}
	logger.Warn(ctx, "intake.counter", "counter.fallback", attrs...)
	if i.onFallback != nil {
		i.onFallback()
	}
	return fallback
}
