package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/mdnspanel/internal/backend"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport/memory"
)

type fixture struct {
	sync    *Synchronizer
	bus     *memory.Bus
	backend *backend.Backend
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("svc-%d", n)
	}
}

func newBackend(t *testing.T, bus *memory.Bus) *backend.Backend {
	t.Helper()
	b, err := backend.New(context.Background(), logger.New("error", false),
		backend.WithEmitter(bus),
		backend.WithHostname("lab-host"),
		backend.WithIDs(sequentialIDs()),
	)
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	bus.Attach(b)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bus := memory.New()
	b := newBackend(t, bus)

	s := New(bus, logger.New("error", false))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(s.Close)
	return fixture{sync: s, bus: bus, backend: b}
}

func printer() domain.ServiceSpec {
	return domain.ServiceSpec{Name: "Printer", ServiceType: "_http._tcp", Port: 631, Attributes: map[string]string{}, Enabled: true}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return data
}

func TestAddPrinter(t *testing.T) {
	f := newFixture(t)

	if err := f.sync.Add(context.Background(), printer()); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	list := f.sync.Services()
	if len(list) != 1 {
		t.Fatalf("Services() length = %d, want 1", len(list))
	}
	got := list[0]
	if got.ID == "" {
		t.Error("record has no backend-assigned id")
	}
	if got.Name != "Printer" || got.ServiceType != "_http._tcp" || got.Port != 631 || !got.Enabled || len(got.Attributes) != 0 {
		t.Errorf("record = %+v", got)
	}
	if !got.Status.Valid() {
		t.Errorf("status = %q, want running|stopped|error", got.Status)
	}
}

// spyTransport remembers the last service list carried by a command response.
type spyTransport struct {
	transport.Transport
	mu   sync.Mutex
	last []domain.ServiceRecord
}

func (s *spyTransport) Call(ctx context.Context, command string, args any, out any) error {
	err := s.Transport.Call(ctx, command, args, out)
	if list, ok := out.(*[]domain.ServiceRecord); ok && err == nil {
		s.mu.Lock()
		s.last = domain.CloneList(*list)
		s.mu.Unlock()
	}
	return err
}

func TestListEqualsEveryResponse(t *testing.T) {
	bus := memory.New()
	newBackend(t, bus)
	spy := &spyTransport{Transport: bus}
	s := New(spy, logger.New("error", false))
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	steps := []struct {
		name string
		run  func() error
	}{
		{"add printer", func() error { return s.Add(ctx, printer()) }},
		{"add web", func() error {
			return s.Add(ctx, domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 8080, Attributes: map[string]string{"path": "/"}})
		}},
		{"toggle printer", func() error { return s.Toggle(ctx, "svc-1") }},
		{"update web", func() error {
			return s.Update(ctx, "svc-2", domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 9090, Enabled: true})
		}},
		{"start all", func() error { return s.StartAll(ctx) }},
		{"stop all", func() error { return s.StopAll(ctx) }},
		{"remove printer", func() error { return s.Remove(ctx, "svc-1") }},
		{"fetch", func() error { return s.FetchAll(ctx) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		spy.mu.Lock()
		want := spy.last
		spy.mu.Unlock()
		if got := s.Services(); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: Services() = %+v, want response %+v", step.name, got, want)
		}
	}
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())
	before := mustJSON(t, f.sync.Services())

	err := f.sync.Update(ctx, "does-not-exist", printer())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
	if after := mustJSON(t, f.sync.Services()); string(after) != string(before) {
		t.Errorf("list changed:\nbefore %s\nafter  %s", before, after)
	}
	if f.sync.LastError() == "" {
		t.Error("LastError() is empty after a failed update")
	}
}

func TestAddInvalidPortSendsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())
	before := mustJSON(t, f.sync.Services())
	calls := f.bus.Calls(transport.CmdAddService)

	spec := printer()
	spec.Port = 70000
	err := f.sync.Add(ctx, spec)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Add() error = %v, want ErrValidation", err)
	}
	if n := f.bus.Calls(transport.CmdAddService); n != calls {
		t.Errorf("add_service issued %d more time(s), want none", n-calls)
	}
	if after := mustJSON(t, f.sync.Services()); string(after) != string(before) {
		t.Errorf("list changed after validation failure")
	}
}

func TestValidationCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		spec domain.ServiceSpec
	}{
		{name: "blank name", spec: domain.ServiceSpec{Name: "  ", ServiceType: "_http._tcp", Port: 80}},
		{name: "blank type", spec: domain.ServiceSpec{Name: "web", ServiceType: " ", Port: 80}},
		{name: "port zero", spec: domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 0}},
		{name: "blank txt key", spec: domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80, Attributes: map[string]string{" ": "x"}}},
		{name: "txt keys equal once trimmed", spec: domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80, Attributes: map[string]string{"path": "/a", " path": "/b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.sync.Add(ctx, tt.spec); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Add() error = %v, want ErrValidation", err)
			}
			if err := f.sync.Update(ctx, "svc-1", tt.spec); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Update() error = %v, want ErrValidation", err)
			}
		})
	}
	if n := f.bus.Calls(transport.CmdAddService) + f.bus.Calls(transport.CmdUpdateService); n != 0 {
		t.Errorf("%d commands issued for invalid input, want 0", n)
	}
}

func TestEmptyPushEmptiesList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())
	if len(f.sync.Services()) == 0 {
		t.Fatal("precondition: list should not be empty")
	}

	if err := f.bus.Emit(transport.EventServicesChanged, []domain.ServiceRecord{}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if got := f.sync.Services(); len(got) != 0 {
		t.Errorf("Services() = %+v, want empty", got)
	}
}

func TestFailedMutationLeavesListUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		command string
		fault   error
		run     func(ctx context.Context, s *Synchronizer) error
	}{
		{name: "toggle transport", command: transport.CmdToggleService, fault: domain.Transportf("connection reset"),
			run: func(ctx context.Context, s *Synchronizer) error { return s.Toggle(ctx, "svc-1") }},
		{name: "start all backend", command: transport.CmdStartAll, fault: domain.Backendf("port already bound"),
			run: func(ctx context.Context, s *Synchronizer) error { return s.StartAll(ctx) }},
		{name: "remove transport", command: transport.CmdDeleteService, fault: domain.Transportf("timeout"),
			run: func(ctx context.Context, s *Synchronizer) error { return s.Remove(ctx, "svc-1") }},
		{name: "fetch transport", command: transport.CmdGetServices, fault: domain.Transportf("timeout"),
			run: func(ctx context.Context, s *Synchronizer) error { return s.FetchAll(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_ = f.sync.Add(ctx, printer())
			before := mustJSON(t, f.sync.Services())

			f.bus.InjectFault(tt.command, tt.fault)
			err := tt.run(ctx, f.sync)
			if err == nil {
				t.Fatal("operation succeeded, want failure")
			}
			if domain.KindOf(err) != domain.KindOf(tt.fault) {
				t.Errorf("error kind = %s, want %s", domain.KindOf(err), domain.KindOf(tt.fault))
			}
			if after := mustJSON(t, f.sync.Services()); string(after) != string(before) {
				t.Errorf("list changed:\nbefore %s\nafter  %s", before, after)
			}
			if f.sync.LastError() != domain.MessageOf(tt.fault) {
				t.Errorf("LastError() = %q, want %q", f.sync.LastError(), domain.MessageOf(tt.fault))
			}

			if err := f.sync.FetchAll(ctx); err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if f.sync.LastError() != "" {
				t.Errorf("LastError() = %q after success, want empty", f.sync.LastError())
			}
		})
	}
}

func TestReplyWithoutResultLeavesListUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.sync.Add(ctx, printer()); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	before := mustJSON(t, f.sync.Services())

	f.bus.Attach(transport.DispatcherFunc(func(ctx context.Context, command string, args json.RawMessage) (any, error) {
		if command == transport.CmdToggleService {
			return nil, nil
		}
		return f.backend.Dispatch(ctx, command, args)
	}))

	err := f.sync.Toggle(ctx, "svc-1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("Toggle() error = %v, want ErrTransport", err)
	}
	if after := mustJSON(t, f.sync.Services()); string(after) != string(before) {
		t.Errorf("list changed:\nbefore %s\nafter  %s", before, after)
	}
	if f.sync.LastError() == "" {
		t.Error("LastError() is empty after a reply without result")
	}
}

func TestRemoveAbsentIDIsReported(t *testing.T) {
	f := newFixture(t)
	if err := f.sync.Remove(context.Background(), "gone"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
}

func withoutStatus(list []domain.ServiceRecord) []domain.ServiceRecord {
	out := domain.CloneList(list)
	for i := range out {
		out[i].Status = ""
	}
	return out
}

func TestImportExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.sync.Add(ctx, printer())
	_ = f.sync.Add(ctx, domain.ServiceSpec{Name: "NAS", ServiceType: "_smb._tcp", Port: 445, Attributes: map[string]string{"model": "Xserve", "path": "/share"}})
	_ = f.sync.Add(ctx, domain.ServiceSpec{Name: "ssh", ServiceType: "_ssh._tcp", Port: 22, Enabled: true})
	before := f.sync.Services()

	exported, err := f.sync.ExportAll(ctx)
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if err := f.sync.ImportAll(ctx, exported); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	if got := f.sync.Services(); !reflect.DeepEqual(withoutStatus(got), withoutStatus(before)) {
		t.Errorf("round trip:\n got  %+v\n want %+v", got, before)
	}
}

func TestImportMalformedSendsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())
	before := mustJSON(t, f.sync.Services())

	inputs := []string{
		``,
		`{"services": [`,
		`[{"name":"web","type":"_http._tcp","port":99999,"enabled":true}]`,
		`{"hostname":"x"}`,
	}
	for _, in := range inputs {
		if err := f.sync.ImportAll(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ImportAll(%q) error = %v, want ErrValidation", in, err)
		}
	}
	if n := f.bus.Calls(transport.CmdImportConfig); n != 0 {
		t.Errorf("import_config issued %d time(s), want 0", n)
	}
	if after := mustJSON(t, f.sync.Services()); string(after) != string(before) {
		t.Error("list changed after malformed import")
	}
}

func TestImportYAMLList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())

	yamlDoc := `- name: web
  type: _http._tcp
  port: 8080
  txt:
    path: /
  enabled: false
- name: ssh
  type: _ssh._tcp
  port: 22
  enabled: true
`
	if err := f.sync.ImportAll(ctx, yamlDoc); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	list := f.sync.Services()
	if len(list) != 2 || list[0].Name != "web" || list[1].Name != "ssh" {
		t.Fatalf("Services() = %+v", list)
	}
	if list[1].Status != domain.StatusRunning || list[0].Status != domain.StatusStopped {
		t.Errorf("statuses = %s/%s, want stopped/running", list[0].Status, list[1].Status)
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	f := newFixture(t)
	_ = f.sync.Add(context.Background(), printer())
	if n := f.bus.Subscribers(transport.EventServicesChanged); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}

	f.sync.Close()

	if n := f.bus.Subscribers(transport.EventServicesChanged); n != 0 {
		t.Errorf("Subscribers() after Close = %d, want 0", n)
	}
	_ = f.bus.Emit(transport.EventServicesChanged, []domain.ServiceRecord{})
	if len(f.sync.Services()) != 1 {
		t.Error("push applied after Close")
	}
	if err := f.sync.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close = %v, want ErrClosed", err)
	}
}

func TestStartFailureReleasesSubscription(t *testing.T) {
	bus := memory.New()
	newBackend(t, bus)
	bus.SetOffline(true)

	s := New(bus, logger.New("error", false))
	err := s.Start(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("Start() error = %v, want ErrTransport", err)
	}
	if n := bus.Subscribers(transport.EventServicesChanged); n != 0 {
		t.Errorf("Subscribers() after failed Start = %d, want 0", n)
	}
	if s.Loading() {
		t.Error("Loading() = true after the first fetch completed")
	}
	if s.LastError() == "" {
		t.Error("LastError() is empty after a failed Start")
	}

	bus.SetOffline(false)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() retry error = %v", err)
	}
	s.Close()
}

func TestLoading(t *testing.T) {
	bus := memory.New()
	newBackend(t, bus)
	s := New(bus, logger.New("error", false))
	if !s.Loading() {
		t.Error("Loading() = false before the first fetch")
	}
	if !s.LastApplied().IsZero() {
		t.Error("LastApplied() is set before the first fetch")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	if s.Loading() || s.LastApplied().IsZero() {
		t.Error("Loading()/LastApplied() not updated by the first fetch")
	}
}

// staleTransport answers stop_all with the list as it was before a newer push.
type staleTransport struct {
	*memory.Bus
	newer []domain.ServiceRecord
}

func (s *staleTransport) Call(ctx context.Context, command string, args any, out any) error {
	err := s.Bus.Call(ctx, command, args, out)
	if command == transport.CmdStopAll && err == nil {
		_ = s.Bus.Emit(transport.EventServicesChanged, s.newer)
		// The response was captured before the push and is applied after it.
	}
	return err
}

func TestStaleResponseWinsByArrivalOrder(t *testing.T) {
	bus := memory.New()
	newBackend(t, bus)
	newer := []domain.ServiceRecord{{ID: "from-push", Name: "newer", ServiceType: "_http._tcp", Port: 1, Attributes: map[string]string{}, Status: domain.StatusRunning}}
	tr := &staleTransport{Bus: bus, newer: newer}

	s := New(tr, logger.New("error", false))
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()
	_ = s.Add(ctx, printer())

	if err := s.StopAll(ctx); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}

	list := s.Services()
	if len(list) != 1 || list[0].Name != "Printer" {
		t.Errorf("Services() = %+v, want the stop_all response applied last", list)
	}
}

func TestObserversSeeEveryApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var lengths []int
	unsub := f.sync.Subscribe(func(list []domain.ServiceRecord) {
		lengths = append(lengths, len(list))
	})

	_ = f.sync.Add(ctx, printer())
	_ = f.bus.Emit(transport.EventServicesChanged, []domain.ServiceRecord{})
	unsub()
	_ = f.sync.FetchAll(ctx)

	// add_service: one push, then the response.
	want := []int{1, 1, 0}
	if !reflect.DeepEqual(lengths, want) {
		t.Errorf("observed lengths = %v, want %v", lengths, want)
	}
}

func TestFindAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())
	_ = f.sync.Add(ctx, domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80})

	rec, ok := f.sync.Find("svc-2")
	if !ok || rec.Name != "web" {
		t.Errorf("Find(svc-2) = %+v, %v", rec, ok)
	}
	if _, ok := f.sync.Find("nope"); ok {
		t.Error("Find(nope) reported a record")
	}

	want := domain.StatusSummary{Total: 2, Running: 1, Stopped: 1}
	if got := f.sync.Summary(); got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.sync.Add(ctx, printer())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					for _, r := range f.sync.Services() {
						if r.ID == "" {
							t.Error("read a record without id")
							return
						}
					}
					_ = f.sync.Summary()
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		_ = f.sync.Toggle(ctx, "svc-1")
	}
	close(stop)
	wg.Wait()
}
