package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"WeddingSite/internal/models"
)

const partyColumns = `id, display_name, contact_email, rsvp_deadline, reminders_enabled,
	rsvp_status, headcount, message, responded_at, created_at, updated_at`

func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ListReminderRecipients returns every party opted into reminders that has
// a contact address.
func (s *Store) ListReminderRecipients(ctx context.Context) ([]models.Recipient, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT display_name, contact_email, rsvp_deadline
		FROM parties
		WHERE reminders_enabled AND TRIM(contact_email) <> ''
		ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Recipient, 0)
	for rows.Next() {
		var (
			r        models.Recipient
			deadline sql.NullTime
		)
		if err := rows.Scan(&r.DisplayName, &r.ContactEmail, &deadline); err != nil {
			return nil, err
		}
		r.RSVPDeadline = timePtr(deadline)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+partyColumns+`
		FROM parties
		ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Party, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreateParty inserts p, assigning an id when it has none.
func (s *Store) CreateParty(ctx context.Context, p *models.Party) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		return insertParty(ctx, tx, p)
	})
}

// ImportParties inserts or refreshes parties by contact email in one
// transaction.
func (s *Store) ImportParties(ctx context.Context, parties []models.Party) (int, error) {
	n := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range parties {
			if err := insertParty(ctx, tx, &parties[i]); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func insertParty(ctx context.Context, tx *sql.Tx, p *models.Party) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.RSVPStatus == "" {
		p.RSVPStatus = models.RSVPPending
	}
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)

	if p.ContactEmail == "" {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO parties (id, display_name, contact_email, rsvp_deadline, reminders_enabled, rsvp_status)
			VALUES ($1,$2,'',$3,$4,$5)`,
			p.ID, p.DisplayName, nullTime(p.RSVPDeadline), p.RemindersEnabled, string(p.RSVPStatus),
		)
		return err
	}

	return tx.QueryRowContext(ctx, `
		INSERT INTO parties (id, display_name, contact_email, rsvp_deadline, reminders_enabled, rsvp_status)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (LOWER(contact_email)) WHERE contact_email <> ''
		DO UPDATE SET display_name=EXCLUDED.display_name,
		              rsvp_deadline=EXCLUDED.rsvp_deadline,
		              reminders_enabled=EXCLUDED.reminders_enabled,
		              updated_at=NOW()
		RETURNING id`,
		p.ID, p.DisplayName, p.ContactEmail, nullTime(p.RSVPDeadline), p.RemindersEnabled, string(p.RSVPStatus),
	).Scan(&p.ID)
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM parties WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SubmitRSVP records an answer for the party with the given contact email.
func (s *Store) SubmitRSVP(ctx context.Context, sub models.RSVPSubmission, at time.Time) (*models.Party, error) {
	status := models.RSVPDeclined
	headcount := 0
	if sub.Attending {
		status = models.RSVPAccepted
		headcount = sub.Headcount
	}

	row := s.DB.QueryRowContext(ctx, `
		UPDATE parties
		SET rsvp_status=$1,
		    headcount=$2,
		    message=$3,
		    responded_at=$4,
		    updated_at=$4
		WHERE LOWER(contact_email)=LOWER($5)
		RETURNING `+partyColumns,
		string(status),
		headcount,
		sub.Message,
		at.UTC(),
		strings.TrimSpace(sub.Email),
	)
	return scanParty(row)
}

func scanParty(row scanner) (*models.Party, error) {
	var (
		p         models.Party
		status    string
		deadline  sql.NullTime
		responded sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.ContactEmail,
		&deadline,
		&p.RemindersEnabled,
		&status,
		&p.Headcount,
		&p.Message,
		&responded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.RSVPStatus = models.RSVPStatus(status)
	p.RSVPDeadline = timePtr(deadline)
	p.RespondedAt = timePtr(responded)
	return &p, nil
}
