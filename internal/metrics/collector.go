// Package metrics exposes transport traffic and synchronized state to Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Sources are read on every scrape. Nil funcs are skipped.
type Sources struct {
	Summary    func() domain.StatusSummary
	LogLength  func() int
	Interfaces func() int
}

// Collector implements prometheus.Collector and transport.Recorder.
type Collector struct {
	src Sources

	commandsTotal   *prometheus.Desc
	commandsFailed  *prometheus.Desc
	commandSeconds  *prometheus.Desc
	pushesTotal     *prometheus.Desc
	services        *prometheus.Desc
	logEntries      *prometheus.Desc
	interfacesTotal *prometheus.Desc

	mu         sync.Mutex
	calls      map[string]float64
	failures   map[[2]string]float64
	latencySum map[string]float64
	latencyN   map[string]uint64
	pushes     map[string]float64
}

func NewCollector(src Sources) *Collector {
	return &Collector{
		src: src,
		commandsTotal: prometheus.NewDesc(
			"mdnspanel_commands_total",
			"Commands issued to the backend",
			[]string{"command"}, nil,
		),
		commandsFailed: prometheus.NewDesc(
			"mdnspanel_commands_failed_total",
			"Commands that returned an error, by error kind",
			[]string{"command", "kind"}, nil,
		),
		commandSeconds: prometheus.NewDesc(
			"mdnspanel_command_duration_seconds",
			"Command round-trip time",
			[]string{"command"}, nil,
		),
		pushesTotal: prometheus.NewDesc(
			"mdnspanel_push_events_total",
			"Push events delivered by the backend",
			[]string{"event"}, nil,
		),
		services: prometheus.NewDesc(
			"mdnspanel_services",
			"Services in the synchronized list, by reported status",
			[]string{"status"}, nil,
		),
		logEntries: prometheus.NewDesc(
			"mdnspanel_log_entries",
			"Entries held by the event log buffer",
			nil, nil,
		),
		interfacesTotal: prometheus.NewDesc(
			"mdnspanel_network_interfaces",
			"Interfaces in the last network snapshot",
			nil, nil,
		),
		calls:      make(map[string]float64),
		failures:   make(map[[2]string]float64),
		latencySum: make(map[string]float64),
		latencyN:   make(map[string]uint64),
		pushes:     make(map[string]float64),
	}
}

func (c *Collector) ObserveCommand(command string, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[command]++
	c.latencySum[command] += elapsed.Seconds()
	c.latencyN[command]++
	if err != nil {
		c.failures[[2]string{command, domain.KindOf(err)}]++
	}
}

func (c *Collector) ObservePush(event string) {
	c.mu.Lock()
	c.pushes[event]++
	c.mu.Unlock()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commandsTotal
	ch <- c.commandsFailed
	ch <- c.commandSeconds
	ch <- c.pushesTotal
	ch <- c.services
	ch <- c.logEntries
	ch <- c.interfacesTotal
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	for cmd, n := range c.calls {
		ch <- prometheus.MustNewConstMetric(c.commandsTotal, prometheus.CounterValue, n, cmd)
		ch <- prometheus.MustNewConstSummary(c.commandSeconds, c.latencyN[cmd], c.latencySum[cmd], nil, cmd)
	}
	for key, n := range c.failures {
		ch <- prometheus.MustNewConstMetric(c.commandsFailed, prometheus.CounterValue, n, key[0], key[1])
	}
	for event, n := range c.pushes {
		ch <- prometheus.MustNewConstMetric(c.pushesTotal, prometheus.CounterValue, n, event)
	}
	c.mu.Unlock()

	if c.src.Summary != nil {
		s := c.src.Summary()
		ch <- prometheus.MustNewConstMetric(c.services, prometheus.GaugeValue, float64(s.Running), string(domain.StatusRunning))
		ch <- prometheus.MustNewConstMetric(c.services, prometheus.GaugeValue, float64(s.Stopped), string(domain.StatusStopped))
		ch <- prometheus.MustNewConstMetric(c.services, prometheus.GaugeValue, float64(s.Error), string(domain.StatusError))
	}
	if c.src.LogLength != nil {
		ch <- prometheus.MustNewConstMetric(c.logEntries, prometheus.GaugeValue, float64(c.src.LogLength()))
	}
	if c.src.Interfaces != nil {
		ch <- prometheus.MustNewConstMetric(c.interfacesTotal, prometheus.GaugeValue, float64(c.src.Interfaces()))
	}
}

// Handler serves c, plus Go runtime and process metrics, on a private registry.
func Handler(c *Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	for _, col := range []prometheus.Collector{
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
