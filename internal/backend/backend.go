// Package backend is the reference service manager behind the command table.
// It owns the configuration, the runtime status of every service and the
// operational log, and emits services-changed and log-entry after every change.
package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/mdnspanel/internal/document"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// DefaultMaxLogEntries bounds the backend-side log history.
const DefaultMaxLogEntries = 500

type Backend struct {
	mu sync.Mutex
	// emitMu is taken before mu is released so pushes leave in commit order.
	emitMu sync.Mutex

	doc      document.Document
	statuses map[string]domain.ServiceStatus
	logs     []domain.LogEntry

	maxLogs    int
	store      Store
	adv        Advertiser
	emitter    transport.Emitter
	interfaces func() ([]domain.NetworkInterface, error)
	hostname   string
	now        func() time.Time
	newID      func() string
	log        logger.Logger
}

type Option func(*Backend)

func WithStore(s Store) Option               { return func(b *Backend) { b.store = s } }
func WithAdvertiser(a Advertiser) Option     { return func(b *Backend) { b.adv = a } }
func WithEmitter(e transport.Emitter) Option { return func(b *Backend) { b.emitter = e } }
func WithHostname(h string) Option           { return func(b *Backend) { b.hostname = h } }
func WithClock(now func() time.Time) Option  { return func(b *Backend) { b.now = now } }
func WithIDs(next func() string) Option      { return func(b *Backend) { b.newID = next } }
func WithMaxLogEntries(n int) Option         { return func(b *Backend) { b.maxLogs = n } }

func WithInterfaces(fn func() ([]domain.NetworkInterface, error)) Option {
	return func(b *Backend) { b.interfaces = fn }
}

// New loads the saved configuration (or starts empty), auto-starts every
// enabled service and records the startup in the log.
func New(ctx context.Context, log logger.Logger, opts ...Option) (*Backend, error) {
	b := &Backend{
		statuses:   make(map[string]domain.ServiceStatus),
		maxLogs:    DefaultMaxLogEntries,
		interfaces: HostInterfaces,
		now:        time.Now,
		newID:      uuid.NewString,
		log:        log,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.store == nil {
		b.store = NewMemoryStore()
	}
	if b.adv == nil {
		b.adv = NewSimulatedAdvertiser()
	}
	if b.hostname == "" {
		b.hostname = HostName()
	}

	doc, err := b.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoConfig):
		doc = document.Document{Version: document.CurrentVersion, Services: []document.Entry{}}
		if err := b.store.Save(ctx, b.withHost(doc)); err != nil {
			return nil, fmt.Errorf("save initial configuration: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	b.doc = b.withHost(doc)

	var ob outbox
	b.mu.Lock()
	started := 0
	for _, e := range b.doc.Services {
		if !e.Enabled {
			continue
		}
		rec := e.Record(domain.StatusStopped)
		if err := b.adv.Advertise(rec, b.doc.Hostname); err != nil {
			b.statuses[e.ID] = domain.StatusError
			b.log.Warn("failed to auto-start service", logger.String("service", e.Name), logger.Error(err))
			continue
		}
		b.statuses[e.ID] = domain.StatusRunning
		started++
	}
	b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Application started (%d service%s auto-started)", started, plural(started)), "")
	b.unlockAndFlush(ob)

	b.log.Info("backend ready",
		logger.String("hostname", b.doc.Hostname),
		logger.Int("services", len(b.doc.Services)),
		logger.Int("running", started))
	return b, nil
}

// SetEmitter replaces the push-event emitter. Used when the emitter is built after the backend.
func (b *Backend) SetEmitter(e transport.Emitter) {
	b.mu.Lock()
	b.emitter = e
	b.mu.Unlock()
}

// Close withdraws every running service and closes the store.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.doc.Services {
		if b.statuses[e.ID] == domain.StatusRunning {
			_ = b.adv.Withdraw(e.Record(domain.StatusRunning), b.doc.Hostname)
			b.statuses[e.ID] = domain.StatusStopped
		}
	}
	return b.store.Close()
}

func (b *Backend) withHost(doc document.Document) document.Document {
	doc.Version = document.CurrentVersion
	doc.Hostname = b.hostname
	if doc.Services == nil {
		doc.Services = []document.Entry{}
	}
	return doc
}

// ─────────────────────────────
// Read side
// ─────────────────────────────

func (b *Backend) Services() []domain.ServiceRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewsLocked()
}

func (b *Backend) HostName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Hostname
}

func (b *Backend) EventLogs() []domain.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.LogEntry, len(b.logs))
	copy(out, b.logs)
	return out
}

func (b *Backend) ClearEventLogs() {
	b.mu.Lock()
	b.logs = nil
	b.mu.Unlock()
}

func (b *Backend) NetworkInterfaces() ([]domain.NetworkInterface, error) {
	list, err := b.interfaces()
	if err != nil {
		return nil, domain.Backendf("list network interfaces: %v", err)
	}
	if list == nil {
		list = []domain.NetworkInterface{}
	}
	return list, nil
}

// ExportConfig returns the configuration as an indented JSON envelope.
func (b *Backend) ExportConfig() (string, error) {
	b.mu.Lock()
	doc := b.doc
	b.mu.Unlock()

	data, err := document.Encode(doc, document.FormatJSON)
	if err != nil {
		return "", domain.Backendf("encode configuration: %v", err)
	}
	return string(data), nil
}

func (b *Backend) viewsLocked() []domain.ServiceRecord {
	out := make([]domain.ServiceRecord, 0, len(b.doc.Services))
	for _, e := range b.doc.Services {
		status, ok := b.statuses[e.ID]
		if !ok {
			status = domain.StatusStopped
		}
		out = append(out, e.Record(status))
	}
	return out
}

func (b *Backend) indexLocked(id string) (int, error) {
	for i, e := range b.doc.Services {
		if e.ID == id {
			return i, nil
		}
	}
	return -1, domain.NotFoundf("service not found: %s", id)
}

// ─────────────────────────────
// Mutations
// ─────────────────────────────

// AddService appends a service and starts it when enabled.
func (b *Backend) AddService(ctx context.Context, spec domain.ServiceSpec) ([]domain.ServiceRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec = spec.Normalize()

	b.mu.Lock()
	entry := entryFromSpec(b.newID(), spec)
	next := b.doc
	next.Services = append(slices.Clone(b.doc.Services), entry)
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	var ob outbox
	b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Service '%s' added", entry.Name), entry.ID)
	if entry.Enabled {
		b.startLocked(&ob, entry, "Failed to start service '%s': %v")
	}
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// UpdateService replaces the declaration of id, restarting it when enabled.
func (b *Backend) UpdateService(ctx context.Context, id string, spec domain.ServiceSpec) ([]domain.ServiceRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec = spec.Normalize()

	b.mu.Lock()
	idx, err := b.indexLocked(id)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	old := b.doc.Services[idx]
	entry := entryFromSpec(id, spec)
	next := b.doc
	next.Services = slices.Clone(b.doc.Services)
	next.Services[idx] = entry
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	var ob outbox
	if b.statuses[id] == domain.StatusRunning {
		_ = b.adv.Withdraw(old.Record(domain.StatusRunning), b.doc.Hostname)
		b.statuses[id] = domain.StatusStopped
	}
	b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Service '%s' updated", entry.Name), id)
	if entry.Enabled {
		b.startLocked(&ob, entry, "Failed to start service '%s': %v")
	}
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// DeleteService removes id. Deleting an unknown id is a not-found error.
func (b *Backend) DeleteService(ctx context.Context, id string) ([]domain.ServiceRecord, error) {
	b.mu.Lock()
	idx, err := b.indexLocked(id)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	old := b.doc.Services[idx]
	next := b.doc
	next.Services = slices.Delete(slices.Clone(b.doc.Services), idx, idx+1)
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	var ob outbox
	if b.statuses[id] == domain.StatusRunning {
		_ = b.adv.Withdraw(old.Record(domain.StatusRunning), b.doc.Hostname)
	}
	delete(b.statuses, id)
	b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Service '%s' deleted", old.Name), id)
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// ToggleService stops a running service or starts any other, flipping its enabled flag.
func (b *Backend) ToggleService(ctx context.Context, id string) ([]domain.ServiceRecord, error) {
	b.mu.Lock()
	idx, err := b.indexLocked(id)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	entry := b.doc.Services[idx]
	running := b.statuses[id] == domain.StatusRunning

	next := b.doc
	next.Services = slices.Clone(b.doc.Services)
	next.Services[idx].Enabled = !running
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	var ob outbox
	if running {
		_ = b.adv.Withdraw(entry.Record(domain.StatusRunning), b.doc.Hostname)
		b.statuses[id] = domain.StatusStopped
		b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Service '%s' stopped", entry.Name), id)
	} else {
		b.startLocked(&ob, entry, "Failed to start service '%s': %v")
	}
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// StartAll enables every service and starts those not already running.
func (b *Backend) StartAll(ctx context.Context) ([]domain.ServiceRecord, error) {
	return b.setAll(ctx, true)
}

// StopAll disables every service and stops those running.
func (b *Backend) StopAll(ctx context.Context) ([]domain.ServiceRecord, error) {
	return b.setAll(ctx, false)
}

func (b *Backend) setAll(ctx context.Context, enabled bool) ([]domain.ServiceRecord, error) {
	b.mu.Lock()
	next := b.doc
	next.Services = slices.Clone(b.doc.Services)
	for i := range next.Services {
		next.Services[i].Enabled = enabled
	}
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	var ob outbox
	for _, e := range b.doc.Services {
		running := b.statuses[e.ID] == domain.StatusRunning
		switch {
		case enabled && !running:
			b.startQuietLocked(&ob, e, "Failed to start service '%s': %v")
		case !enabled && running:
			_ = b.adv.Withdraw(e.Record(domain.StatusRunning), b.doc.Hostname)
			b.statuses[e.ID] = domain.StatusStopped
		}
	}
	msg := "All services stopped"
	if enabled {
		msg = "All services started"
	}
	b.appendLogLocked(&ob, domain.LevelInfo, msg, "")
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// ImportConfig replaces the whole configuration. Running services are stopped,
// the hostname is kept, and enabled services of the new document are started.
// Document ids are kept unless missing or duplicated.
func (b *Backend) ImportConfig(ctx context.Context, serialized string) ([]domain.ServiceRecord, error) {
	doc, err := document.Parse([]byte(serialized))
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	seen := make(map[string]bool, len(doc.Services))
	for i := range doc.Services {
		id := doc.Services[i].ID
		if id == "" || seen[id] {
			id = b.newID()
			doc.Services[i].ID = id
		}
		seen[id] = true
	}
	previous := b.viewsLocked()
	next := b.withHost(doc)
	if err := b.saveLocked(ctx, next); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	for _, r := range previous {
		if r.Status == domain.StatusRunning {
			_ = b.adv.Withdraw(r, next.Hostname)
		}
	}
	clear(b.statuses)

	var ob outbox
	for _, e := range next.Services {
		if e.Enabled {
			b.startQuietLocked(&ob, e, "Failed to start imported service '%s': %v")
		}
	}
	n := len(next.Services)
	b.appendLogLocked(&ob, domain.LevelInfo, fmt.Sprintf("Configuration imported (%d service%s)", n, plural(n)), "")
	views := b.changedLocked(&ob)
	b.unlockAndFlush(ob)
	return views, nil
}

// ─────────────────────────────
// Helpers (callers hold b.mu)
// ─────────────────────────────

func (b *Backend) saveLocked(ctx context.Context, next document.Document) error {
	if err := b.store.Save(ctx, next); err != nil {
		return domain.Backendf("save configuration: %v", err)
	}
	b.doc = next
	return nil
}

func (b *Backend) startLocked(ob *outbox, e document.Entry, failFormat string) {
	if b.startQuietLocked(ob, e, failFormat) {
		b.appendLogLocked(ob, domain.LevelInfo, fmt.Sprintf("Service '%s' started", e.Name), e.ID)
	}
}

// startQuietLocked advertises e and logs only a failure.
func (b *Backend) startQuietLocked(ob *outbox, e document.Entry, failFormat string) bool {
	if err := b.adv.Advertise(e.Record(domain.StatusStopped), b.doc.Hostname); err != nil {
		b.statuses[e.ID] = domain.StatusError
		b.appendLogLocked(ob, domain.LevelError, fmt.Sprintf(failFormat, e.Name, err), e.ID)
		return false
	}
	b.statuses[e.ID] = domain.StatusRunning
	return true
}

func (b *Backend) appendLogLocked(ob *outbox, level domain.LogLevel, msg, serviceID string) {
	entry := domain.LogEntry{
		Timestamp: b.now().UTC(),
		Level:     level,
		Message:   msg,
		ServiceID: serviceID,
	}
	if b.maxLogs > 0 && len(b.logs) >= b.maxLogs {
		b.logs = slices.Delete(b.logs, 0, len(b.logs)-b.maxLogs+1)
	}
	b.logs = append(b.logs, entry)
	ob.add(transport.EventLogEntry, entry)
}

func (b *Backend) changedLocked(ob *outbox) []domain.ServiceRecord {
	views := b.viewsLocked()
	ob.add(transport.EventServicesChanged, domain.CloneList(views))
	return views
}

type emission struct {
	event   string
	payload any
}

// outbox collects push events under the lock; unlockAndFlush sends them after release.
type outbox struct {
	events []emission
}

func (o *outbox) add(event string, payload any) {
	o.events = append(o.events, emission{event: event, payload: payload})
}

// unlockAndFlush releases mu and emits ob under emitMu, so pushes leave in the
// order their mutations committed. Subscribers may read the backend from
// inside Emit but must not mutate it.
func (b *Backend) unlockAndFlush(ob outbox) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	em := b.emitter
	b.mu.Unlock()

	if em == nil {
		return
	}
	for _, e := range ob.events {
		if err := em.Emit(e.event, e.payload); err != nil {
			b.log.Warn("emit failed", logger.String("event", e.event), logger.Error(err))
		}
	}
}

func entryFromSpec(id string, spec domain.ServiceSpec) document.Entry {
	txt := spec.Attributes
	if txt == nil {
		txt = map[string]string{}
	}
	return document.Entry{
		ID:      id,
		Name:    spec.Name,
		Type:    spec.ServiceType,
		Port:    spec.Port,
		TXT:     txt,
		Enabled: spec.Enabled,
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
