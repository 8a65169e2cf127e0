package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryJSON(t *testing.T) {
	cases := []struct {
		name string
		sum  Summary
		want string
	}{
		{"ok with nothing due", Summary{OK: true}, `{"ok":true,"processed":0}`},
		{"ok with sends", Summary{OK: true, Processed: 2, Sent: 3, Duplicates: 1}, `{"ok":true,"processed":2,"sent":3,"duplicates":1}`},
		{"fatal", Summary{Error: "mail sender not configured"}, `{"ok":false,"error":"mail sender not configured"}`},
		{"cancelled mid run", Summary{Processed: 1, Sent: 1, Error: "run cancelled: context canceled"},
			`{"ok":false,"processed":1,"sent":1,"error":"run cancelled: context canceled"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.sum)
			require.NoError(t, err)
			require.JSONEq(t, tc.want, string(got))
		})
	}
}
