package csvparser

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"WeddingSite/internal/models"
)

var exportHeader = []string{
	"Name", "Email", "Deadline", "Reminders", "RSVP", "Headcount", "Message", "Responded",
}

// WriteGuestList writes parties in the same column layout ParseGuestRows
// accepts, followed by the RSVP columns.
func WriteGuestList(w io.Writer, parties []models.Party) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, p := range parties {
		deadline := ""
		if p.RSVPDeadline != nil {
			deadline = p.RSVPDeadline.UTC().Format("2006-01-02")
		}
		responded := ""
		if p.RespondedAt != nil {
			responded = p.RespondedAt.UTC().Format(time.RFC3339)
		}

		if err := cw.Write([]string{
			p.DisplayName,
			p.ContactEmail,
			deadline,
			strconv.FormatBool(p.RemindersEnabled),
			string(p.RSVPStatus),
			strconv.Itoa(p.Headcount),
			p.Message,
			responded,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
