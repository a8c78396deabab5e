package isotime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	ist := time.FixedZone("", 5*3600+30*60)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"extended date", "2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"basic date", "20240229", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-02-29T10:30:00Z", time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)},
		{"lowercase z", "2024-02-29t10:30:00z", time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)},
		{"space separator", "2024-02-29 10:30", time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)},
		{"hour only", "2024-01-01T10", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"basic time", "20240101T103015", time.Date(2024, 1, 1, 10, 30, 15, 0, time.UTC)},
		{"fraction", "2024-01-01T10:30:15.25", time.Date(2024, 1, 1, 10, 30, 15, 250000000, time.UTC)},
		{"comma fraction", "2024-01-01T10:30:15,5", time.Date(2024, 1, 1, 10, 30, 15, 500000000, time.UTC)},
		{"long fraction truncated", "2024-01-01T10:30:15.1234567891", time.Date(2024, 1, 1, 10, 30, 15, 123456789, time.UTC)},
		{"offset with colon", "2024-01-01T10:00:00+05:30", time.Date(2024, 1, 1, 10, 0, 0, 0, ist)},
		{"offset without colon", "2024-01-01T10:00:00+0530", time.Date(2024, 1, 1, 10, 0, 0, 0, ist)},
		{"offset hours only", "2024-01-01T10:00:00+05", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"negative offset", "2024-01-01T10:00-03:00", time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)},
		{"week date monday default", "2024-W01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"week date with day", "2024-W10-5", time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)},
		{"basic week date", "2024W105", time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)},
		{"week 1 starts in previous year", "2021-W01-1", time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"week 53", "2020-W53-7", time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"week date with time", "2024-W01-3T08:15", time.Date(2024, 1, 3, 8, 15, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"next tuesday",
		"2024",
		"2024-02",
		"2024-13-01",
		"2023-02-29",
		"2024-0229",
		"202402-29",
		"2024-02-29X10:00",
		"2024-02-29T",
		"2024-02-29T24:00",
		"2024-02-29T10:60",
		"2024-02-29T10:30:00.",
		"2024-02-29T10:3000",
		"2024-02-29T10:30:00+5",
		"2024-02-29T10:30:00+05:30 extra",
		"2023-W53",
		"2024-W00",
		"2024-W01-8",
		"0000-01-01",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}
