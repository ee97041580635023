// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/m3rciful/intakebot/intake/gateway"
)

// Kind of a recorded message.
type Kind string

const (
	Text     Kind = "text"
	Photo    Kind = "photo"
	Document Kind = "document"
)

// ErrInjected is returned by sends that match a Fail rule.
var ErrInjected = errors.New("gatewaytest: injected failure")

// Message is one recorded send.
type Message struct {
	Kind     Kind
	ChatID   int64
	Text     string
	FileID   string
	Keyboard *gateway.Keyboard
}

// Recorder records every send. Failed sends count as attempts but are not returned by Sent.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	failed   []bool
	rules    []func(Message) bool
}

// Fail makes every later send matching match return ErrInjected.
func (r *Recorder) Fail(match func(Message) bool) {
	r.mu.Lock()
	r.rules = append(r.rules, match)
	r.mu.Unlock()
}

// FailChat fails all sends to chatID of the given kind.
func (r *Recorder) FailChat(chatID int64, kind Kind) {
	r.Fail(func(m Message) bool { return m.ChatID == chatID && m.Kind == kind })
}

func (r *Recorder) record(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fail := false
	for _, rule := range r.rules {
		if rule(m) {
			fail = true
			break
		}
	}
	r.messages = append(r.messages, m)
	r.failed = append(r.failed, fail)
	if fail {
		return ErrInjected
	}
	return nil
}

func (r *Recorder) SendText(_ context.Context, chatID int64, text string, kb *gateway.Keyboard) error {
	return r.record(Message{Kind: Text, ChatID: chatID, Text: text, Keyboard: kb})
}

func (r *Recorder) SendPhoto(_ context.Context, chatID int64, fileID, caption string) error {
	return r.record(Message{Kind: Photo, ChatID: chatID, Text: caption, FileID: fileID})
}

func (r *Recorder) SendDocument(_ context.Context, chatID int64, fileID, caption string) error {
	return r.record(Message{Kind: Document, ChatID: chatID, Text: caption, FileID: fileID})
}

// Sent returns the successfully delivered messages for chatID.
func (r *Recorder) Sent(chatID int64) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for i, m := range r.messages {
		if m.ChatID == chatID && !r.failed[i] {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the last delivered message for chatID.
func (r *Recorder) Last(chatID int64) (Message, bool) {
	sent := r.Sent(chatID)
	if len(sent) == 0 {
		return Message{}, false
	}
	return sent[len(sent)-1], true
}

// Contains reports whether any delivered text to chatID contains sub.
func (r *Recorder) Contains(chatID int64, sub string) bool {
	for _, m := range r.Sent(chatID) {
		if strings.Contains(m.Text, sub) {
			return true
		}
	}
	return false
}

// Attempts counts every send, delivered or not.
func (r *Recorder) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

// Reset forgets recorded messages; failure rules stay.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.failed = nil
	r.mu.Unlock()
}

var _ gateway.Gateway = (*Recorder)(nil)
