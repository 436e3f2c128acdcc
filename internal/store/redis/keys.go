package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyLogArchive is the capped list of archived log entries (oldest first).
	KeyLogArchive = "mdnspanel:logs"
	// KeyPrefixBackup prefixes each stored configuration backup.
	KeyPrefixBackup = "mdnspanel:backup:"
	// KeyBackupIndex is the sorted set of backup ids scored by creation time.
	KeyBackupIndex = "mdnspanel:backups"
)

// BackupKey returns the key holding backup id.
func BackupKey(id string) string {
	return KeyPrefixBackup + id
}

// ExtractBackupID returns the backup id from a backup key.
func ExtractBackupID(key string) (string, error) {
	id, ok := strings.CutPrefix(key, KeyPrefixBackup)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid backup key: %s", key)
	}
	return id, nil
}
