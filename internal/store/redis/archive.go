package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Archive appends entry to the log archive and trims it to the configured size.
func (s *Store) Archive(ctx context.Context, entry domain.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, KeyLogArchive, data)
		pipe.LTrim(ctx, KeyLogArchive, -s.logSize, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to archive log entry: %w", err)
	}
	return nil
}

// RecentLogEntries returns up to n archived entries, oldest first.
// Unreadable entries are skipped.
func (s *Store) RecentLogEntries(ctx context.Context, n int) ([]domain.LogEntry, error) {
	if n <= 0 {
		return []domain.LogEntry{}, nil
	}
	raw, err := s.client.LRange(ctx, KeyLogArchive, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log archive: %w", err)
	}

	out := make([]domain.LogEntry, 0, len(raw))
	for _, r := range raw {
		var e domain.LogEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ArchiveLength returns the number of archived entries.
func (s *Store) ArchiveLength(ctx context.Context) (int64, error) {
	n, err := s.client.LLen(ctx, KeyLogArchive).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read log archive length: %w", err)
	}
	return n, nil
}
