// Package session holds the per-user conversation state and the stores that keep it between turns.
package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"
)

// State is a node of the dialogue graph.
type State string

const (
	StateIdle              State = "idle"
	StateServiceSelect     State = "service_select"
	StateSubCategorySelect State = "subcategory_select"
	StateObjectTypeSelect  State = "object_type_select"
	StateCustomObjectType  State = "custom_object_type"
	StateAreaInput         State = "area_input"
	StateCategoryField     State = "category_field"
	StateFlagPrompt        State = "flag_prompt"
	StateAttachments       State = "attachments"
	StateUrgencySelect     State = "urgency_select"
	StatePriceConfirmation State = "price_confirmation"
)

// AttachmentKind distinguishes photos from documents.
type AttachmentKind string

const (
	KindPhoto    AttachmentKind = "photo"
	KindDocument AttachmentKind = "document"
)

// MaxAttachments caps the number of files stored per request.
const MaxAttachments = 10

// Attachment is an opaque transport file reference.
type Attachment struct {
	Kind   AttachmentKind `json:"kind"`
	FileID string         `json:"file_id"`
}

// Session is the in-flight conversation of one user.
// Answers[i] answers question i of the selected category, so len(Answers) == Cursor
// once the category is chosen.
type Session struct {
	State       State           `json:"state"`
	Category    string          `json:"category,omitempty"`
	SubCategory string          `json:"sub_category,omitempty"`
	Answers     []string        `json:"answers,omitempty"`
	Cursor      int             `json:"cursor"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	Flags       map[string]bool `json:"flags,omitempty"`
	// PendingFlag names the side flag being asked while State is StateFlagPrompt.
	PendingFlag string    `json:"pending_flag,omitempty"`
	Urgency     string    `json:"urgency,omitempty"`
	PriceReport string    `json:"price_report,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New returns an empty session in StateIdle.
func New(now time.Time) *Session {
	return &Session{State: StateIdle, StartedAt: now, UpdatedAt: now}
}

// Clone returns a deep copy; stores hand out clones so an aborted turn leaves no trace.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Answers = slices.Clone(s.Answers)
	c.Attachments = slices.Clone(s.Attachments)
	c.Flags = maps.Clone(s.Flags)
	return &c
}

// SetFlag records a side answer.
func (s *Session) SetFlag(name string, v bool) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	s.Flags[name] = v
}

// HasFlag reports whether the flag was already answered.
func (s *Session) HasFlag(name string) bool {
	_, ok := s.Flags[name]
	return ok
}

// AddAttachment appends a file unless the cap is reached.
func (s *Session) AddAttachment(a Attachment) bool {
	if len(s.Attachments) >= MaxAttachments {
		return false
	}
	s.Attachments = append(s.Attachments, a)
	return true
}

// ErrUnavailable wraps backend failures so callers can tell them from programming errors.
var ErrUnavailable = errors.New("session store unavailable")

// Store keeps one session per user id. Get reports absence with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, bool, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
	Close() error
}
