package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const insertRequest = `INSERT INTO requests
	(id, request_no, user_id, username, category, sub_category, urgency, total, payload, submitted_at)
VALUES
	(:id, :request_no, :user_id, :username, :category, :sub_category, :urgency, :total, :payload, :submitted_at)
ON CONFLICT (id) DO NOTHING`

type requestRow struct {
	ID          string    `db:"id"`
	Number      int       `db:"request_no"`
	UserID      int64     `db:"user_id"`
	Username    string    `db:"username"`
	Category    string    `db:"category"`
	SubCategory string    `db:"sub_category"`
	Urgency     string    `db:"urgency"`
	Total       int       `db:"total"`
	Payload     []byte    `db:"payload"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// ArchiveSink stores delivered requests in the requests table.
type ArchiveSink struct {
	db *sqlx.DB
}

func NewArchiveSink(db *sqlx.DB) *ArchiveSink {
	return &ArchiveSink{db: db}
}

func (a *ArchiveSink) Name() string { return "postgres" }

func (a *ArchiveSink) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("archive encode: %w", err)
	}
	row := requestRow{
		ID:          rec.ID.String(),
		Number:      rec.Number,
		UserID:      rec.User.ID,
		Username:    rec.User.Username,
		Category:    rec.Category,
		SubCategory: rec.SubCategory,
		Urgency:     rec.Urgency,
		Total:       rec.Total,
		Payload:     payload,
		SubmittedAt: rec.SubmittedAt,
	}
	if _, err := a.db.NamedExecContext(ctx, insertRequest, row); err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}
