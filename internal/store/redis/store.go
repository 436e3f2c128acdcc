package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DefaultLogArchiveSize caps the archived log list.
const DefaultLogArchiveSize = 5000

// Store keeps the log archive and configuration backups in Redis.
type Store struct {
	client  *redis.Client
	logSize int64
}

// NewStore uses client. logSize <= 0 selects DefaultLogArchiveSize.
func NewStore(client *redis.Client, logSize int) *Store {
	if logSize <= 0 {
		logSize = DefaultLogArchiveSize
	}
	return &Store{client: client, logSize: int64(logSize)}
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
