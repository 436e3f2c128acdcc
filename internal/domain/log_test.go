package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func sampleEntries() []LogEntry {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []LogEntry{
		{Timestamp: base, Level: LevelInfo, Message: "Service 'web' added", ServiceID: "a"},
		{Timestamp: base.Add(-time.Minute), Level: LevelError, Message: "Failed to start service 'web'"},
		{Timestamp: base.Add(time.Second), Level: LevelWarn, Message: "slow"},
		{Timestamp: base.Add(2 * time.Second), Level: LevelInfo, Message: "All services stopped"},
	}
}

func TestFilterEntriesAllIsIdentity(t *testing.T) {
	entries := sampleEntries()
	got := FilterEntries(entries, FilterAll)
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("FilterEntries(all) = %v, want %v", got, entries)
	}
}

func TestFilterEntriesByLevel(t *testing.T) {
	entries := sampleEntries()

	got := FilterEntries(entries, LevelFilter(LevelInfo))
	if len(got) != 2 {
		t.Fatalf("FilterEntries(info) returned %d entries, want 2", len(got))
	}
	if got[0].Message != "Service 'web' added" || got[1].Message != "All services stopped" {
		t.Errorf("FilterEntries(info) changed arrival order: %v", got)
	}
	if len(entries) != 4 {
		t.Error("FilterEntries mutated its input")
	}
}

func TestParseLevelFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    LevelFilter
		wantErr bool
	}{
		{in: "", want: FilterAll},
		{in: "all", want: FilterAll},
		{in: "INFO", want: LevelFilter(LevelInfo)},
		{in: " warn ", want: LevelFilter(LevelWarn)},
		{in: "error", want: LevelFilter(LevelError)},
		{in: "debug", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevelFilter(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseLevelFilter(%q) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseLevelFilter(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}
