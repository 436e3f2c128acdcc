package backend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Advertiser publishes and withdraws service records on the network.
type Advertiser interface {
	Advertise(rec domain.ServiceRecord, host string) error
	Withdraw(rec domain.ServiceRecord, host string) error
}

// SimulatedAdvertiser tracks advertisements without touching the network.
// Two running services with the same instance name and type conflict, as
// they would on a real mDNS responder.
type SimulatedAdvertiser struct {
	mu     sync.Mutex
	active map[string]string
}

func NewSimulatedAdvertiser() *SimulatedAdvertiser {
	return &SimulatedAdvertiser{active: make(map[string]string)}
}

func instanceKey(rec domain.ServiceRecord) string {
	return strings.ToLower(rec.Name + "." + domain.QualifiedType(rec.ServiceType))
}

func (a *SimulatedAdvertiser) Advertise(rec domain.ServiceRecord, host string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := instanceKey(rec)
	if owner, ok := a.active[key]; ok && owner != rec.ID {
		return fmt.Errorf("instance %q already advertised on %s", rec.Name, QualifiedHost(host))
	}
	a.active[key] = rec.ID
	return nil
}

func (a *SimulatedAdvertiser) Withdraw(rec domain.ServiceRecord, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := instanceKey(rec)
	if a.active[key] == rec.ID {
		delete(a.active, key)
	}
	return nil
}

// Active returns the number of advertised instances.
func (a *SimulatedAdvertiser) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

// QualifiedHost returns host under the .local. domain.
func QualifiedHost(host string) string {
	switch {
	case strings.HasSuffix(host, ".local."):
		return host
	case strings.HasSuffix(host, ".local"):
		return host + "."
	default:
		return host + ".local."
	}
}
