package domain

import (
	"strings"
	"time"
)

// LogLevel is the severity of an operational log entry.
type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one operational event. Entries are immutable once created.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	ServiceID string    `json:"serviceId,omitempty"`
}

// LevelFilter selects log entries by level. FilterAll is the identity filter.
type LevelFilter string

const FilterAll LevelFilter = "all"

// ParseLevelFilter accepts "all", "info", "warn" or "error" (case-insensitive).
// An empty string means "all".
func ParseLevelFilter(s string) (LevelFilter, error) {
	switch v := LevelFilter(strings.ToLower(strings.TrimSpace(s))); v {
	case "", FilterAll:
		return FilterAll, nil
	case LevelFilter(LevelInfo), LevelFilter(LevelWarn), LevelFilter(LevelError):
		return v, nil
	default:
		return "", Validationf("unknown log level filter %q", s)
	}
}

// Match reports whether entry passes the filter.
func (f LevelFilter) Match(entry LogEntry) bool {
	return f == FilterAll || f == "" || LevelFilter(entry.Level) == f
}

// FilterEntries returns the entries passing f, preserving arrival order.
// The input is never modified.
func FilterEntries(entries []LogEntry, f LevelFilter) []LogEntry {
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
