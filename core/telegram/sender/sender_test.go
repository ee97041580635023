package sender

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dialErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	s := New(Options{MaxRetries: 3, RetryBackoff: time.Millisecond})
	calls := 0
	err := s.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return dialErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Zero(t, s.ErrorCount())
}

func TestDoStopsOnPermanentError(t *testing.T) {
	var failures []string
	s := New(Options{
		MaxRetries:   5,
		RetryBackoff: time.Millisecond,
		OnFailure:    func(action, kind string) { failures = append(failures, action+":"+kind) },
	})
	calls := 0
	apiErr := &tele.Error{Code: 400, Description: "Bad Request: chat not found"}
	err := s.Do(context.Background(), "send.photo", "sendPhoto", func() error {
		calls++
		return apiErr
	})
	require.ErrorIs(t, err, apiErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), s.ErrorCount())
	assert.Equal(t, []string{"send.photo:http_4xx"}, failures)
}

func TestDoGivesUpAfterRetries(t *testing.T) {
	s := New(Options{MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := s.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		return dialErr()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "dial", classifyError(err))
}

func TestDoRespectsMaxDuration(t *testing.T) {
	s := New(Options{MaxRetries: 100, RetryBackoff: 50 * time.Millisecond, MaxDuration: 20 * time.Millisecond})
	calls := 0
	start := time.Now()
	err := s.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		return dialErr()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRedactMasksToken(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:ABC-def_ghi/sendMessage": dial tcp`)
	assert.NotContains(t, Redact(err), "ABC-def_ghi")
	assert.Contains(t, Redact(err), "bot<redacted>")
}

func TestHTTPStatusFromError(t *testing.T) {
	assert.Equal(t, 429, httpStatusFromError(tele.FloodError{RetryAfter: 3}))
	assert.Equal(t, 403, httpStatusFromError(&tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}))
	assert.Equal(t, 502, httpStatusFromError(errors.New("telegram: bad gateway (502)")))
	assert.Zero(t, httpStatusFromError(errors.New("boom")))
}
