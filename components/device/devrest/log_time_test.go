package devrest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLogTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  time.Time
		ok    bool
	}{
		{"10:00:01", time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC), true},
		{"2024-04-30 23:59:59", time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), true},
		{"apr/30 08:15:00", time.Date(2024, 4, 30, 8, 15, 0, 0, time.UTC), true},
		{"apr/30/2023 08:15:00", time.Date(2023, 4, 30, 8, 15, 0, 0, time.UTC), true},
		{"04-30 08:15:00", time.Date(2024, 4, 30, 8, 15, 0, 0, time.UTC), true},
		{"dec/31 23:00:00", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, test := range tests {
		ts, ok := parseLogTime(test.value, now)
		require.Equal(t, test.ok, ok, test.value)
		require.True(t, test.want.Equal(ts), test.value)
	}
}
