package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SanitizeUpstream strips any code point outside printable ASCII, the
// printable Latin-1 supplement and {tab, newline, carriage return}. It is
// applied to every piece of text that enters the system from an upstream
// service, including error messages synthesized locally.
func SanitizeUpstream(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
		case r >= 0xA0 && r <= 0xFF:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var approxCountRe = regexp.MustCompile(`(?i)([0-9][0-9.,]*)\s*([KMB])?`)

// ParseApproxCount converts human-readable counts such as "52K views",
// "1.2M subscribers" or "3,400" into an absolute number. Magnitude suffixes
// are always expanded; unparseable input yields 0.
func ParseApproxCount(s string) int64 {
	m := approxCountRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[1] == "" {
		return 0
	}
	numText := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		val *= 1_000
	case "M":
		val *= 1_000_000
	case "B":
		val *= 1_000_000_000
	}
	return int64(val)
}

var relativeAgeRe = regexp.MustCompile(`(?i)(\d+)\s*(year|month|week|day|hour|minute)s?\s*ago`)

// ParseRelativeAge resolves strings like "2 months ago" against now.
// Returns the zero time when the text does not look like a relative age.
func ParseRelativeAge(s string, now time.Time) time.Time {
	m := relativeAgeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}
	}
	switch strings.ToLower(m[2]) {
	case "year":
		return now.AddDate(-n, 0, 0)
	case "month":
		return now.AddDate(0, -n, 0)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "day":
		return now.AddDate(0, 0, -n)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute)
	}
	return time.Time{}
}
