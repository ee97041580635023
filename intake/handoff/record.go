// Package handoff delivers confirmed requests to the staff chat and the optional archive sinks.
package handoff

import (
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/intakebot/intake/session"
)

// User identifies the requester.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name"`
}

// Field is one labelled line of the summary.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Record is a confirmed request. It lives only for the duration of the handoff.
type Record struct {
	ID            uuid.UUID            `json:"id"`
	Number        int                  `json:"number"`
	User          User                 `json:"user"`
	Category      string               `json:"category"`
	CategoryTitle string               `json:"category_title"`
	SubCategory   string               `json:"sub_category,omitempty"`
	Answers       []Field              `json:"answers"`
	Flags         []Field              `json:"flags,omitempty"`
	Attachments   []session.Attachment `json:"attachments,omitempty"`
	Urgency       string               `json:"urgency"`
	PriceReport   string               `json:"price_report"`
	// Total is the quoted amount after discount, zero when the price was not computed.
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewRecord stamps a fresh id and submission time.
func NewRecord(number int, user User, now time.Time) Record {
	return Record{ID: uuid.New(), Number: number, User: user, SubmittedAt: now.UTC()}
}
