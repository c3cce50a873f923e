package logquery

import (
	"fmt"
	"time"

	"github.com/logplatform/backend/internal/models"
)

// timestampLen is len("2026-01-17 10:30:00").
const timestampLen = 19

// ExtractTimestamp returns the first "YYYY-MM-DD HH:MM:SS" substring of line.
// Later timestamps in the same line (stack traces, payloads) are ignored.
func ExtractTimestamp(line string) (string, bool) {
	for i := 0; i+timestampLen <= len(line); i++ {
		if isTimestampAt(line, i) {
			return line[i : i+timestampLen], true
		}
	}
	return "", false
}

// ExtractTime returns the HH:MM:SS part of the line's first timestamp.
func ExtractTime(line string) (string, bool) {
	ts, ok := ExtractTimestamp(line)
	if !ok {
		return "", false
	}
	return ts[11:], true
}

// isTimestampAt checks the fixed layout without regexp; this runs once per scanned line.
func isTimestampAt(s string, i int) bool {
	const layout = "dddd-dd-dd dd:dd:dd"
	for j := 0; j < timestampLen; j++ {
		c := s[i+j]
		if layout[j] == 'd' {
			if c < '0' || c > '9' {
				return false
			}
		} else if c != layout[j] {
			return false
		}
	}
	return true
}

// ParseTimestamp converts an extracted timestamp to a time.Time in UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	if len(ts) != timestampLen || !isTimestampAt(ts, 0) {
		return time.Time{}, fmt.Errorf("malformed timestamp: %q", ts)
	}

	year := parseInt4(ts[0:4])
	month := parseInt2(ts[5:7])
	day := parseInt2(ts[8:10])
	hour := parseInt2(ts[11:13])
	min := parseInt2(ts[14:16])
	sec := parseInt2(ts[17:19])

	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("timestamp out of range: %q", ts)
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; reject that instead.
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("timestamp out of range: %q", ts)
	}
	return t, nil
}

// parseInt2 parses a 2-digit decimal string. Returns -1 on error.
func parseInt2(s string) int {
	if len(s) != 2 {
		return -1
	}
	d1, d2 := s[0]-'0', s[1]-'0'
	if d1 > 9 || d2 > 9 {
		return -1
	}
	return int(d1)*10 + int(d2)
}

// parseInt4 parses a 4-digit decimal string. Returns -1 on error.
func parseInt4(s string) int {
	if len(s) != 4 {
		return -1
	}
	d1, d2, d3, d4 := s[0]-'0', s[1]-'0', s[2]-'0', s[3]-'0'
	if d1 > 9 || d2 > 9 || d3 > 9 || d4 > 9 {
		return -1
	}
	return int(d1)*1000 + int(d2)*100 + int(d3)*10 + int(d4)
}

// TimeInRange reports whether the line's HH:MM:SS lies in [start, end].
// Both bounds must be zero-padded HH:MM:SS so string order equals time order.
// A line without a timestamp is always in range.
func TimeInRange(line, start, end string) bool {
	t, ok := ExtractTime(line)
	if !ok {
		return true
	}
	return start <= t && t <= end
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}
