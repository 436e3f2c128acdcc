// Package registry keeps the client-side view of the backend's service list.
//
// Every command response and every services-changed push replaces the whole
// list; nothing is merged. Updates are applied in arrival order, so a slow
// response can overwrite a newer pushed list. That race is accepted: the
// backend is the serialization point and the next push or fetch corrects it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/document"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/notify"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// ErrClosed is returned by Start on a closed synchronizer.
var ErrClosed = errors.New("registry closed")

// state is published atomically and never modified after publication.
type state struct {
	services  []domain.ServiceRecord
	appliedAt time.Time
	loaded    bool
	lastErr   string
}

// Synchronizer owns the canonical service list.
// Reads are lock-free; applies are serialized by mu.
type Synchronizer struct {
	tr  transport.Transport
	log logger.Logger
	now func() time.Time

	mu      sync.Mutex
	closed  bool
	started bool
	unsub   transport.Unsubscribe

	snap atomic.Pointer[state]
	hub  notify.Hub[[]domain.ServiceRecord]
}

func New(tr transport.Transport, log logger.Logger) *Synchronizer {
	s := &Synchronizer{tr: tr, log: log, now: time.Now}
	s.snap.Store(&state{services: []domain.ServiceRecord{}})
	return s
}

// Start subscribes to services-changed and performs the initial fetch.
// On any error the subscription is released before returning.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("registry already started")
	}
	unsub, err := s.tr.Subscribe(transport.EventServicesChanged, s.onServicesChanged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", transport.EventServicesChanged, err)
	}
	s.started = true
	s.unsub = unsub
	s.mu.Unlock()

	if err := s.FetchAll(ctx); err != nil {
		s.release()
		return err
	}
	return nil
}

// Close releases the push subscription. No update is applied afterwards.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.release()
}

func (s *Synchronizer) release() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.started = false
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// ─────────────────────────────
// Read side
// ─────────────────────────────

// Services returns a copy of the current list.
func (s *Synchronizer) Services() []domain.ServiceRecord {
	return domain.CloneList(s.snap.Load().services)
}

// Find returns the record with id from the current list.
func (s *Synchronizer) Find(id string) (domain.ServiceRecord, bool) {
	for _, r := range s.snap.Load().services {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return domain.ServiceRecord{}, false
}

func (s *Synchronizer) Summary() domain.StatusSummary {
	return domain.Summarize(s.snap.Load().services)
}

// Loading reports whether the first fetch has not completed yet.
func (s *Synchronizer) Loading() bool {
	return !s.snap.Load().loaded
}

// LastError is the message of the most recent failed operation, or "".
// The next successful operation clears it.
func (s *Synchronizer) LastError() string {
	return s.snap.Load().lastErr
}

// LastApplied is when the current list was applied. Zero before the first apply.
func (s *Synchronizer) LastApplied() time.Time {
	return s.snap.Load().appliedAt
}

// Subscribe registers fn for every newly applied list and returns its release func.
// fn runs with the write lock held, in apply order; it must not call mutating operations.
func (s *Synchronizer) Subscribe(fn func([]domain.ServiceRecord)) func() {
	return s.hub.Subscribe(fn)
}

// ─────────────────────────────
// Operations
// ─────────────────────────────

func (s *Synchronizer) FetchAll(ctx context.Context) error {
	var list []domain.ServiceRecord
	if err := s.tr.Call(ctx, transport.CmdGetServices, nil, &list); err != nil {
		s.fail("fetch services", err, true)
		return fmt.Errorf("fetch services: %w", err)
	}
	s.apply(list, true)
	return nil
}

func (s *Synchronizer) Add(ctx context.Context, spec domain.ServiceSpec) error {
	if err := spec.Validate(); err != nil {
		s.fail("add service", err, false)
		return fmt.Errorf("add service: %w", err)
	}
	spec = spec.Normalize()
	return s.mutate(ctx, "add service", transport.CmdAddService, transport.NewServiceArgs("", spec))
}

func (s *Synchronizer) Update(ctx context.Context, id string, spec domain.ServiceSpec) error {
	err := spec.Validate()
	if err == nil && id == "" {
		err = domain.Validationf("service id is required")
	}
	if err != nil {
		s.fail("update service", err, false)
		return fmt.Errorf("update service: %w", err)
	}
	spec = spec.Normalize()
	return s.mutate(ctx, "update service", transport.CmdUpdateService, transport.NewServiceArgs(id, spec))
}

// Remove deletes id. An id the backend does not know is reported, not ignored.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove service", transport.CmdDeleteService, transport.IDArgs{ID: id})
}

func (s *Synchronizer) Toggle(ctx context.Context, id string) error {
	return s.mutate(ctx, "toggle service", transport.CmdToggleService, transport.IDArgs{ID: id})
}

func (s *Synchronizer) StartAll(ctx context.Context) error {
	return s.mutate(ctx, "start all services", transport.CmdStartAll, nil)
}

func (s *Synchronizer) StopAll(ctx context.Context) error {
	return s.mutate(ctx, "stop all services", transport.CmdStopAll, nil)
}

// ImportAll replaces the backend configuration with serialized (JSON or YAML,
// envelope or bare list). A malformed document is rejected before any command.
func (s *Synchronizer) ImportAll(ctx context.Context, serialized string) error {
	doc, err := document.Parse([]byte(serialized))
	if err != nil {
		s.fail("import configuration", err, false)
		return fmt.Errorf("import configuration: %w", err)
	}
	payload, err := document.Marshal(doc)
	if err != nil {
		err = domain.Validationf("encode configuration: %v", err)
		s.fail("import configuration", err, false)
		return fmt.Errorf("import configuration: %w", err)
	}
	return s.mutate(ctx, "import configuration", transport.CmdImportConfig, transport.ImportArgs{JSON: payload})
}

// ExportAll returns the serialized configuration. The list is not touched.
func (s *Synchronizer) ExportAll(ctx context.Context) (string, error) {
	var out string
	if err := s.tr.Call(ctx, transport.CmdExportConfig, nil, &out); err != nil {
		s.fail("export configuration", err, false)
		return "", fmt.Errorf("export configuration: %w", err)
	}
	s.clearError()
	return out, nil
}

func (s *Synchronizer) mutate(ctx context.Context, op, command string, args any) error {
	var list []domain.ServiceRecord
	if err := s.tr.Call(ctx, command, args, &list); err != nil {
		s.fail(op, err, false)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.apply(list, true)
	return nil
}

// ─────────────────────────────
// Apply
// ─────────────────────────────

func (s *Synchronizer) onServicesChanged(payload []byte) {
	var list []domain.ServiceRecord
	if err := transport.DecodePayload(payload, &list); err != nil {
		s.log.Warn("ignoring malformed push", logger.String("event", transport.EventServicesChanged), logger.Error(err))
		return
	}
	s.apply(list, false)
}

// apply publishes list as the new snapshot. fromOperation clears LastError.
func (s *Synchronizer) apply(list []domain.ServiceRecord, fromOperation bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	prev := s.snap.Load()
	next := &state{
		services:  domain.CloneList(list),
		appliedAt: s.now(),
		loaded:    true,
		lastErr:   prev.lastErr,
	}
	if fromOperation {
		next.lastErr = ""
	}
	s.snap.Store(next)
	s.hub.Publish(domain.CloneList(next.services))
}

// fail records err as LastError. The list is never touched.
// markLoaded ends the loading phase even though the fetch failed.
func (s *Synchronizer) fail(op string, err error, markLoaded bool) {
	s.log.Warn("registry operation failed", logger.String("op", op), logger.String("kind", domain.KindOf(err)), logger.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	next := *s.snap.Load()
	next.lastErr = domain.MessageOf(err)
	if markLoaded {
		next.loaded = true
	}
	s.snap.Store(&next)
}

func (s *Synchronizer) clearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	prev := s.snap.Load()
	if prev.lastErr == "" {
		return
	}
	next := *prev
	next.lastErr = ""
	s.snap.Store(&next)
}
