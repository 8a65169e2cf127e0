package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"WeddingSite/internal/models"
)

// ParseGuestRows reads a guest list. The header must contain a "Name"
// column; "Email", "Deadline" and "Reminders" are optional. Header names are
// case-insensitive.
//
// maxRows limits how many data rows are parsed (excluding header).
func ParseGuestRows(r io.Reader, maxRows int) ([]models.Party, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := map[string]int{"name": -1, "email": -1, "deadline": -1, "reminders": -1}
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	if idx["name"] == -1 {
		return nil, errors.New("csv must contain a Name column")
	}

	if maxRows <= 0 {
		maxRows = 1000
	}

	col := func(record []string, key string) string {
		i := idx[key]
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	parties := make([]models.Party, 0)
	line := 1
	for len(parties) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}

		name := col(record, "name")
		if name == "" {
			continue
		}

		p := models.Party{
			DisplayName:  name,
			ContactEmail: col(record, "email"),
			RSVPStatus:   models.RSVPPending,
		}

		if v := col(record, "deadline"); v != "" {
			d, err := parseDeadline(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			p.RSVPDeadline = &d
		}

		p.RemindersEnabled = p.ContactEmail != ""
		if v := col(record, "reminders"); v != "" {
			on, err := parseFlag(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			p.RemindersEnabled = on
		}

		parties = append(parties, p)
	}

	if len(parties) == 0 {
		return nil, errors.New("csv must contain at least one data row")
	}

	return parties, nil
}

func parseDeadline(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q", v)
	}
	return t.UTC(), nil
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid reminders flag %q", v)
	}
	return b, nil
}
