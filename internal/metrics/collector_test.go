package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector(Sources{
		Summary:    func() domain.StatusSummary { return domain.StatusSummary{Total: 3, Running: 2, Stopped: 1} },
		LogLength:  func() int { return 7 },
		Interfaces: func() int { return 2 },
	})
	c.ObserveCommand("get_services", nil, 5*time.Millisecond)
	c.ObserveCommand("add_service", domain.Validationf("bad port"), time.Millisecond)
	c.ObservePush("services-changed")

	h, err := Handler(c)
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`mdnspanel_commands_total{command="get_services"} 1`,
		`mdnspanel_commands_failed_total{command="add_service",kind="validation"} 1`,
		`mdnspanel_push_events_total{event="services-changed"} 1`,
		`mdnspanel_services{status="running"} 2`,
		`mdnspanel_log_entries 7`,
		`mdnspanel_network_interfaces 2`,
		`mdnspanel_command_duration_seconds_count{command="add_service"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
