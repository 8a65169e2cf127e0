package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"WeddingSite/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

var logCols = []string{"id", "campaign_title", "recipient_email", "day_bucket", "kind", "created_at"}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS reminder_log`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_ReturnsPersistedRow(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2025, 9, 15, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (campaign_title, recipient_email, day_bucket)`)).
		WithArgs("mine", "Final Details", "a@x.com", "2025-09-15", "DAYS_OUT", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(logCols).
			AddRow("theirs", "Final Details", "a@x.com", "2025-09-15", "DAYS_OUT", now))

	got, err := s.Claim(context.Background(), models.SendLogEntry{
		ID:             "mine",
		CampaignTitle:  "Final Details",
		RecipientEmail: "a@x.com",
		DayBucket:      "2025-09-15",
		Kind:           models.KindDaysOut,
		CreatedAt:      now,
	})
	require.NoError(t, err)
	require.Equal(t, "theirs", got.ID)
	require.Equal(t, models.KindDaysOut, got.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reminder_log`)).
		WithArgs("RSVP", "a@x.com", "2025-09-24").
		WillReturnRows(sqlmock.NewRows(logCols))

	_, err := s.Get(context.Background(), models.SendKey{
		CampaignTitle:  "RSVP",
		RecipientEmail: "a@x.com",
		DayBucket:      "2025-09-24",
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reminder_log WHERE id=$1`)).
		WithArgs("claim-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Release(context.Background(), "claim-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_DefaultLimit(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
		WithArgs("Save the Date", "", 100).
		WillReturnRows(sqlmock.NewRows(logCols).
			AddRow("1", "Save the Date", "a@x.com", "2025-09-24", "ABSOLUTE", now).
			AddRow("2", "Save the Date", "b@x.com", "2025-09-24", "ABSOLUTE", now))

	got, err := s.History(context.Background(), models.HistoryFilter{Campaign: "Save the Date"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, models.KindAbsolute, got[1].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}
