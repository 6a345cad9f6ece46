package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses the leading H:MM:SS,mmm (or H:MM:SS.mmm) token of s.
// Anything after the first space is cue settings and is ignored. Fields are
// plain integers of any width; the fraction counts milliseconds as written.
func ParseTimestamp(s string) (time.Duration, error) {
	token := strings.TrimSpace(s)
	if i := strings.IndexAny(token, " \t"); i >= 0 {
		token = token[:i]
	}

	clock, frac, ok := strings.Cut(strings.ReplaceAll(token, ",", "."), ".")
	if !ok {
		return 0, fmt.Errorf("%w: %q has no millisecond field", ErrMalformedTimestamp, s)
	}

	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("%w: %q is not H:MM:SS", ErrMalformedTimestamp, s)
	}

	var fields [4]int64
	for i, raw := range append(hms, frac) {
		n, err := parseDigits(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
		}
		fields[i] = n
	}

	total, ok := totalMillis(fields[0], fields[1], fields[2], fields[3])
	if !ok {
		return 0, fmt.Errorf("%w: %q is out of range", ErrMalformedTimestamp, s)
	}
	return time.Duration(total) * time.Millisecond, nil
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// totalMillis sums the fields, reporting false if the result would not fit
// in a time.Duration.
func totalMillis(h, m, sec, ms int64) (int64, bool) {
	var total int64
	for _, part := range []struct{ n, unit int64 }{
		{h, 3_600_000}, {m, 60_000}, {sec, 1000}, {ms, 1},
	} {
		if part.n > (maxMillis-total)/part.unit {
			return 0, false
		}
		total += part.n * part.unit
	}
	return total, true
}

func parseDigits(s string) (int64, error) {
	if !isDigits(s) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatTimestamp renders d as HH:MM:SS<sep>mmm. Negative values render as zero.
func FormatTimestamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}

// FormatClock renders the HH:MM:SS progress label. Negative elapsed time,
// which a backward nudge can produce, is shown as zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
