package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-06-01T10:00:00Z":      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		"2024-06-01T12:00:00+02:00": time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		"2024-06-01T10:00:00":       time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		"2024-06-01 10:00":          time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		"2024-06-01":                time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
		assert.Equal(t, time.UTC, got.Location(), in)
	}

	_, err := ParseTimestamp("next tuesday")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
}
