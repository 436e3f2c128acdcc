package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

func memoryConfig(dbPath string) *config.Config {
	return &config.Config{
		Transport:         config.TransportMemory,
		DBPath:            dbPath,
		BackendLogEntries: 500,
	}
}

func TestDialMemoryTransportPersists(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	cfg := memoryConfig(filepath.Join(t.TempDir(), "db"))

	c, err := Dial(ctx, cfg, log)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	err = c.Registry.Add(ctx, domain.ServiceSpec{
		Name:        "Printer",
		ServiceType: "_ipp._tcp",
		Port:        631,
		Attributes:  map[string]string{},
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	c.Close()

	// A second in-process backend reopens the same Badger directory.
	c, err = Dial(ctx, cfg, log)
	if err != nil {
		t.Fatalf("second Dial() error = %v", err)
	}
	defer c.Close()

	list := c.Registry.Services()
	if len(list) != 1 || list[0].Name != "Printer" {
		t.Fatalf("services after reopen = %+v", list)
	}
	if list[0].Status != domain.StatusRunning {
		t.Errorf("enabled service should auto-start, status = %q", list[0].Status)
	}
	if c.EventLog.Len() == 0 {
		t.Error("event log history should include the startup entry")
	}
}

func TestOpenStoreWithoutPathUsesMemory(t *testing.T) {
	s, err := openStore(memoryConfig(""))
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := s.Load(context.Background()); err == nil {
		t.Error("fresh memory store should report no configuration")
	}
}

func TestStartWithRetry(t *testing.T) {
	a := &App{logger: logger.New("error", false)}

	calls := 0
	a.startWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("backend unreachable")
		}
		return nil
	})
	if calls != 2 {
		t.Errorf("start called %d times, want 2", calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	a.startWithRetry(ctx, "test", func(context.Context) error {
		calls++
		return errors.New("still down")
	})
	if calls != 1 {
		t.Errorf("start called %d times after cancel, want 1", calls)
	}
}
