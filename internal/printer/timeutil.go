package printer

import (
	"fmt"
	"time"
)

var agoUnits = []struct {
	d      time.Duration
	suffix string
}{
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

// TimeAgo returns a compact relative time, e.g. "5s ago", "3h ago".
func TimeAgo(t time.Time) string {
	diff := time.Since(t)
	if diff < 0 {
		return "in the future"
	}
	for _, u := range agoUnits {
		if diff >= u.d {
			return fmt.Sprintf("%d%s ago", int64(diff/u.d), u.suffix)
		}
	}
	return "just now"
}

// FormatTimestamp returns a formatted timestamp string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
