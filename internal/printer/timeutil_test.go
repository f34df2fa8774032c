package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/printer"
)

func TestTimeAgo(t *testing.T) {
	now := time.Now()

	tests := map[string]struct {
		time     time.Time
		expected string
	}{
		"Less than a second should be just now.": {
			time:     now,
			expected: "just now",
		},
		"Seconds should use the s suffix.": {
			time:     now.Add(-30 * time.Second),
			expected: "30s ago",
		},
		"Minutes should use the m suffix.": {
			time:     now.Add(-45 * time.Minute),
			expected: "45m ago",
		},
		"Hours should use the h suffix.": {
			time:     now.Add(-3*time.Hour - 10*time.Minute),
			expected: "3h ago",
		},
		"Days should use the d suffix.": {
			time:     now.Add(-50 * time.Hour),
			expected: "2d ago",
		},
		"Future times should be marked.": {
			time:     now.Add(time.Hour),
			expected: "in the future",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.TimeAgo(test.time))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 5, 6, 9, 8, 9, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2026-05-06 07:08:09 UTC", printer.FormatTimestamp(ts))
}
