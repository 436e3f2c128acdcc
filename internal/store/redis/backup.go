package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoBackup is returned when no backup matches.
var ErrNoBackup = errors.New("no configuration backup")

// Backup is one stored configuration export.
type Backup struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Serialized string    `json:"-"`
}

// backupID derives a sortable id from the creation time.
func backupID(at time.Time) string {
	return strconv.FormatInt(at.UTC().UnixNano(), 10)
}

// SaveBackup stores serialized (an export_config document) and indexes it by time.
func (s *Store) SaveBackup(ctx context.Context, serialized string, at time.Time) (Backup, error) {
	b := Backup{ID: backupID(at), CreatedAt: at.UTC(), Serialized: serialized}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BackupKey(b.ID), serialized, 0)
		pipe.ZAdd(ctx, KeyBackupIndex, redis.Z{Score: float64(at.Unix()), Member: b.ID})
		return nil
	})
	if err != nil {
		return Backup{}, fmt.Errorf("failed to save backup: %w", err)
	}
	return b, nil
}

// GetBackup loads backup id.
func (s *Store) GetBackup(ctx context.Context, id string) (Backup, error) {
	data, err := s.client.Get(ctx, BackupKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Backup{}, ErrNoBackup
		}
		return Backup{}, fmt.Errorf("failed to get backup: %w", err)
	}
	score, err := s.client.ZScore(ctx, KeyBackupIndex, id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Backup{}, fmt.Errorf("failed to get backup time: %w", err)
	}
	return Backup{ID: id, CreatedAt: time.Unix(int64(score), 0).UTC(), Serialized: data}, nil
}

// LatestBackup loads the most recent backup.
func (s *Store) LatestBackup(ctx context.Context) (Backup, error) {
	ids, err := s.client.ZRevRange(ctx, KeyBackupIndex, 0, 0).Result()
	if err != nil {
		return Backup{}, fmt.Errorf("failed to read backup index: %w", err)
	}
	if len(ids) == 0 {
		return Backup{}, ErrNoBackup
	}
	return s.GetBackup(ctx, ids[0])
}

// ListBackups returns backup metadata, newest first. Serialized is left empty.
func (s *Store) ListBackups(ctx context.Context) ([]Backup, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, KeyBackupIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read backup index: %w", err)
	}
	out := make([]Backup, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Backup{ID: id, CreatedAt: time.Unix(int64(z.Score), 0).UTC()})
	}
	return out, nil
}

// BackupsOlderThan returns the ids of backups created before cutoff.
func (s *Store) BackupsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, KeyBackupIndex, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read backup index: %w", err)
	}
	return ids, nil
}

// DeleteBackup removes backup id and its index entry.
func (s *Store) DeleteBackup(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, BackupKey(id))
		pipe.ZRem(ctx, KeyBackupIndex, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}
