package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, June 1 2026
var refNow = time.Date(2026, time.June, 1, 14, 30, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"", "2026-06-01"},
		{"today", "2026-06-01"},
		{"tonight", "2026-06-01"},
		{"tomorrow", "2026-06-02"},
		{"tomorrow evening", "2026-06-02"},
		{"friday", "2026-06-05"},
		{"this Thursday", "2026-06-04"},
		{"next Friday", "2026-06-05"},
		{"next Monday", "2026-06-08"},
		{"monday", "2026-06-01"},
		{"saturday night", "2026-06-06"},
		{"June 15th", "2026-06-15"},
		{"february 14", "2027-02-14"},
		{"Feb 14th", "2027-02-14"},
		{"2026-07-04", "2026-07-04"},
	}

	for _, tc := range cases {
		got, err := parseDate(tc.input, refNow)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got.Format("2006-01-02"), "input %q", tc.input)
	}
}

func TestParseDateRejectsGibberish(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"whenever", "the 32nd of Foo", "june 99"} {
		_, err := parseDate(input, refNow)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"", "19:00"},
		{"7pm", "19:00"},
		{"7 pm", "19:00"},
		{"12pm", "12:00"},
		{"12am", "00:00"},
		{"6:30", "18:30"},
		{"6:30 pm", "18:30"},
		{"19:00", "19:00"},
		{"9am", "09:00"},
		{"evening", "19:00"},
		{"lunch", "12:00"},
		{"noon", "12:00"},
		{"night", "21:00"},
	}

	for _, tc := range cases {
		got, err := parseTime(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestParseTimeRejectsGibberish(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"sometime", "25:00", "7:75"} {
		_, err := parseTime(input)
		assert.Error(t, err, "input %q", input)
	}
}
