// Package eventlog keeps the client-side operational log: backend history
// followed by live log-entry pushes, in arrival order.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/notify"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// ErrClosed is returned by Start on a closed buffer.
var ErrClosed = errors.New("event log closed")

// Archiver keeps appended entries outside the process. Failures are logged, never surfaced.
type Archiver interface {
	Archive(ctx context.Context, entry domain.LogEntry) error
}

const archiveTimeout = 2 * time.Second

type Buffer struct {
	tr  transport.Transport
	log logger.Logger

	retention int
	archiver  Archiver

	mu      sync.RWMutex
	entries []domain.LogEntry
	filter  domain.LevelFilter
	closed  bool
	unsub   transport.Unsubscribe

	hub notify.Hub[domain.LogEntry]
}

type Option func(*Buffer)

// WithRetention caps the buffer at n entries, dropping the oldest. 0 keeps everything.
func WithRetention(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.retention = n
		}
	}
}

func WithArchiver(a Archiver) Option {
	return func(b *Buffer) { b.archiver = a }
}

func New(tr transport.Transport, log logger.Logger, opts ...Option) *Buffer {
	b := &Buffer{tr: tr, log: log, filter: domain.FilterAll, entries: []domain.LogEntry{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start subscribes to log-entry, then loads history. Subscribing first means
// an entry emitted during startup is either in the history or appended after it.
func (b *Buffer) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.unsub != nil {
		b.mu.Unlock()
		return fmt.Errorf("event log already started")
	}
	unsub, err := b.tr.Subscribe(transport.EventLogEntry, b.onLogEntry)
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", transport.EventLogEntry, err)
	}
	b.unsub = unsub
	b.mu.Unlock()

	if err := b.LoadHistory(ctx); err != nil {
		b.release()
		return err
	}
	return nil
}

// Close releases the push subscription.
func (b *Buffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.release()
}

func (b *Buffer) release() {
	b.mu.Lock()
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// LoadHistory replaces the buffer with the backend's history.
func (b *Buffer) LoadHistory(ctx context.Context) error {
	var history []domain.LogEntry
	if err := b.tr.Call(ctx, transport.CmdGetEventLogs, nil, &history); err != nil {
		return fmt.Errorf("load event log: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.entries = b.trim(slices.Clone(history))
	if b.entries == nil {
		b.entries = []domain.LogEntry{}
	}
	return nil
}

// Append adds entry at the end, whatever its timestamp.
func (b *Buffer) Append(entry domain.LogEntry) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.entries = b.trim(append(b.entries, entry))
	b.mu.Unlock()

	b.hub.Publish(entry)
	b.archive(entry)
}

// Clear asks the backend to drop its history and empties the buffer only if that succeeded.
//
// A log-entry pushed after the backend has cleared but before the local reset
// is discarded along with the old history. The window is accepted: the entry
// is still held by the backend and comes back on the next LoadHistory.
func (b *Buffer) Clear(ctx context.Context) error {
	if err := b.tr.Call(ctx, transport.CmdClearEventLogs, nil, nil); err != nil {
		return fmt.Errorf("clear event log: %w", err)
	}

	b.mu.Lock()
	b.entries = []domain.LogEntry{}
	b.mu.Unlock()
	return nil
}

// SetLevelFilter changes the view returned by Entries. The buffer is not touched.
func (b *Buffer) SetLevelFilter(level string) error {
	f, err := domain.ParseLevelFilter(level)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()
	return nil
}

func (b *Buffer) Filter() domain.LevelFilter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// Entries returns the buffer through the current level filter.
func (b *Buffer) Entries() []domain.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.FilterEntries(b.entries, b.filter)
}

// All returns the unfiltered buffer.
func (b *Buffer) All() []domain.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.entries)
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Subscribe registers fn for every appended entry.
func (b *Buffer) Subscribe(fn func(domain.LogEntry)) func() {
	return b.hub.Subscribe(fn)
}

func (b *Buffer) onLogEntry(payload []byte) {
	var entry domain.LogEntry
	if err := transport.DecodePayload(payload, &entry); err != nil {
		b.log.Warn("ignoring malformed push", logger.String("event", transport.EventLogEntry), logger.Error(err))
		return
	}
	b.Append(entry)
}

// trim drops the oldest entries beyond the retention cap. Callers hold mu.
func (b *Buffer) trim(entries []domain.LogEntry) []domain.LogEntry {
	if b.retention <= 0 || len(entries) <= b.retention {
		return entries
	}
	return slices.Clone(entries[len(entries)-b.retention:])
}

func (b *Buffer) archive(entry domain.LogEntry) {
	if b.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := b.archiver.Archive(ctx, entry); err != nil {
		b.log.Warn("failed to archive log entry", logger.Error(err))
	}
}
