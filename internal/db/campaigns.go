package db

import (
	"context"
	"database/sql"

	"WeddingSite/internal/models"
)

// ListCampaigns returns absolute-dated campaigns in send order, then the
// relative ones.
func (s *Store) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT title, template_index, send_at, days_before_deadline, created_at
		FROM reminder_campaigns
		ORDER BY send_at ASC NULLS LAST, title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Campaign, 0)
	for rows.Next() {
		var (
			c      models.Campaign
			sendAt sql.NullTime
			days   sql.NullInt32
		)
		if err := rows.Scan(&c.Title, &c.TemplateIndex, &sendAt, &days, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.SendAt = timePtr(sendAt)
		if days.Valid {
			d := int(days.Int32)
			c.DaysBeforeDeadline = &d
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCampaign(ctx context.Context, c models.Campaign) error {
	var days sql.NullInt32
	if c.DaysBeforeDeadline != nil {
		days = sql.NullInt32{Int32: int32(*c.DaysBeforeDeadline), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reminder_campaigns (title, template_index, send_at, days_before_deadline)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (title) DO UPDATE
		SET template_index=EXCLUDED.template_index,
		    send_at=EXCLUDED.send_at,
		    days_before_deadline=EXCLUDED.days_before_deadline`,
		c.Title,
		c.TemplateIndex,
		nullTime(c.SendAt),
		days,
	)
	return err
}

func (s *Store) DeleteCampaign(ctx context.Context, title string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM reminder_campaigns WHERE title=$1`, title)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
