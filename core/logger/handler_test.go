package logger

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 16)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)
		LogEvent(ctx, log.With("component", "intake.dialogue"), slog.LevelInfo, "turn.done",
			slog.String("status", "OK"),
			slog.String("state", "area_input"),
		)
	})

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=intake.dialogue", "event=turn.done", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "state=area_input"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	line := captureLine(t, formatJSON, func(log *slog.Logger) {
		ctx := WithUpdateMeta(WithRID(Background(), "rid-json"), 11, 22, 33)
		LogEvent(ctx, log.With("component", "intake.handoff"), slog.LevelError, "summary.failed",
			slog.String("status", "fail"),
			slog.Int("request_no", 1042),
			Err(errors.New("boom")),
		)
	})

	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	ordered := []string{`{"ts":`, `"level":"ERROR"`, `"component":"intake.handoff"`, `"event":"summary.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"request_no":1042`, `"err":"boom"`}
	pos := -1
	for _, pref := range ordered {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := "123:456:789"
	kv := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(kv, "rid="+CompactRID(raw)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := captureLine(t, formatJSON, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(js, `"rid":"`+CompactRID(raw)+`"`) || !strings.Contains(js, `"rid_full":"`+raw+`"`) {
		t.Fatalf("expected compact rid and rid_full in JSON, got %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", js)
	}
}

func TestStructuredHandlerGroupsAndDurations(t *testing.T) {
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		log.WithGroup("counter").Info("issued",
			slog.String("driver", "redis"),
			slog.Duration("duration", 1500*time.Microsecond),
			slog.String("cache", "bogus"),
		)
	})
	for _, want := range []string{"event=issued", "component=app", "counter.driver=redis", "counter.duration_ms=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestStructuredHandlerQuotesAndPrunes(t *testing.T) {
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		log.Info("quoted", slog.String("cause", "two words"), slog.String("empty", ""))
	})
	if !strings.Contains(line, `cause="two words"`) {
		t.Fatalf("expected quoted value, got %s", line)
	}
	if strings.Contains(line, "empty=") {
		t.Fatalf("empty values should be pruned, got %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	h := newStructuredHandler(handlerConfig{level: slog.LevelWarn})
	if h.Enabled(Background(), slog.LevelInfo) {
		t.Fatal("info must be filtered at warn level")
	}
	if !h.Enabled(Background(), slog.LevelError) {
		t.Fatal("error must pass at warn level")
	}
}

func TestCompactRIDPassesThroughForeignFormat(t *testing.T) {
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID changed foreign rid: %s", got)
	}
	if got := CompactRID(BuildRID(35, 36, 0)); got != "z.10.0" {
		t.Fatalf("CompactRID = %s", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("ab\x00c\u200bdef", 4); got != "abcd" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
