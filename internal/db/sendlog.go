package db

import (
	"context"
	"database/sql"
	"errors"

	"WeddingSite/internal/models"
)

const createReminderLog = `CREATE TABLE IF NOT EXISTS reminder_log (
	id              TEXT PRIMARY KEY,
	campaign_title  TEXT        NOT NULL,
	recipient_email TEXT        NOT NULL,
	day_bucket      TEXT        NOT NULL,
	kind            TEXT        NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (campaign_title, recipient_email, day_bucket)
)`

const sendLogColumns = `id, campaign_title, recipient_email, day_bucket, kind, created_at`

// EnsureSchema creates the send log table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, createReminderLog)
	return err
}

// Claim inserts e unless its key is already taken and returns the row that
// holds the key afterwards. The no-op update makes RETURNING yield the
// existing row on conflict, so insert and read-back are one statement.
func (s *Store) Claim(ctx context.Context, e models.SendLogEntry) (*models.SendLogEntry, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO reminder_log (id, campaign_title, recipient_email, day_bucket, kind, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (campaign_title, recipient_email, day_bucket)
		DO UPDATE SET campaign_title = EXCLUDED.campaign_title
		RETURNING `+sendLogColumns,
		e.ID,
		e.CampaignTitle,
		e.RecipientEmail,
		e.DayBucket,
		string(e.Kind),
		e.CreatedAt,
	)
	return scanEntry(row)
}

func (s *Store) Get(ctx context.Context, key models.SendKey) (*models.SendLogEntry, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+sendLogColumns+`
		FROM reminder_log
		WHERE campaign_title=$1 AND recipient_email=$2 AND day_bucket=$3`,
		key.CampaignTitle,
		key.RecipientEmail,
		key.DayBucket,
	)
	return scanEntry(row)
}

// Release deletes the claim with the given id.
func (s *Store) Release(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM reminder_log WHERE id=$1`, id)
	return err
}

// History lists send log entries, newest first.
func (s *Store) History(ctx context.Context, f models.HistoryFilter) ([]models.SendLogEntry, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+sendLogColumns+`
		FROM reminder_log
		WHERE ($1 = '' OR campaign_title = $1)
		  AND ($2 = '' OR recipient_email = $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		f.Campaign,
		f.Email,
		f.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SendLogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.SendLogEntry, error) {
	var (
		e    models.SendLogEntry
		kind string
	)
	err := row.Scan(&e.ID, &e.CampaignTitle, &e.RecipientEmail, &e.DayBucket, &kind, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Kind = models.ReminderKind(kind)
	return &e, nil
}
