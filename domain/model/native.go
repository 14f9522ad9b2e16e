// Package model provides domain model for tabimport
package model

import (
	"regexp"
	"strings"
	"time"
)

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}:\d{2}$`),
		[]string{"2.1.2006 15:04:05", "02.01.2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05", "15:04:05.999999999"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}$`),
		[]string{"15:04"},
	},
}

// parseDatetime parses value with the first matching datetime layout.
func parseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseText turns a text cell into a Value.
//
// Blank cells become NullValue. When native is true, the literals
// "true"/"false" (any case) become BoolValue and recognized datetime
// layouts become DateValue; the original text is kept either way.
// Numbers are left as text: the validator parses them on demand.
func ParseText(s string, native bool) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return NullValue()
	}
	if !native {
		return StringValue(s)
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return BoolValue(true).withRaw(s)
	case "false":
		return BoolValue(false).withRaw(s)
	}

	if t, ok := parseDatetime(trimmed); ok {
		return DateValue(t).withRaw(s)
	}
	return StringValue(s)
}

// ParseTextRow converts a row of text cells.
func ParseTextRow(cells []string, native bool) RawRow {
	row := make(RawRow, len(cells))
	for i, c := range cells {
		row[i] = ParseText(c, native)
	}
	return row
}
