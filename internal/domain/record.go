package domain

import "maps"

// ServiceStatus is the actual state of a service as reported by the backend.
// The client never assigns it.
type ServiceStatus string

const (
	StatusRunning ServiceStatus = "running"
	StatusStopped ServiceStatus = "stopped"
	StatusError   ServiceStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s ServiceStatus) Valid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusError:
		return true
	default:
		return false
	}
}

// ServiceRecord represents one advertised service as seen by the backend.
type ServiceRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the backend on creation and never changes.
	ID string `json:"id" yaml:"id"`

	// ─────────────────────────────
	// Operator declaration
	// ─────────────────────────────

	// Name is the display label (the mDNS instance name).
	Name string `json:"name" yaml:"name"`

	// ServiceType is the discovery service type.
	// Example: _http._tcp
	ServiceType string `json:"type" yaml:"type"`

	// Port is the advertised port, 1-65535.
	Port int `json:"port" yaml:"port"`

	// Attributes are the TXT key/value pairs.
	Attributes map[string]string `json:"txt" yaml:"txt"`

	// Enabled is the operator intent (desired state).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ─────────────────────────────
	// Runtime (backend owned)
	// ─────────────────────────────

	// Status may transiently diverge from Enabled while a start/stop is in flight.
	Status ServiceStatus `json:"status" yaml:"-"`
}

// Spec returns the operator-declared part of the record.
func (r ServiceRecord) Spec() ServiceSpec {
	return ServiceSpec{
		Name:        r.Name,
		ServiceType: r.ServiceType,
		Port:        r.Port,
		Attributes:  maps.Clone(r.Attributes),
		Enabled:     r.Enabled,
	}
}

// Clone returns a deep copy of the record.
func (r ServiceRecord) Clone() ServiceRecord {
	r.Attributes = maps.Clone(r.Attributes)
	return r
}

// CloneList deep-copies a service list. A nil list yields an empty, non-nil list.
func CloneList(list []ServiceRecord) []ServiceRecord {
	out := make([]ServiceRecord, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

// ServiceSpec is what an operator declares when adding or updating a service.
type ServiceSpec struct {
	Name        string
	ServiceType string
	Port        int
	Attributes  map[string]string
	Enabled     bool
}

// StatusSummary counts services per backend-reported status.
type StatusSummary struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Stopped int `json:"stopped"`
	Error   int `json:"error"`
}

// Summarize counts the records of list by status.
func Summarize(list []ServiceRecord) StatusSummary {
	s := StatusSummary{Total: len(list)}
	for _, r := range list {
		switch r.Status {
		case StatusRunning:
			s.Running++
		case StatusError:
			s.Error++
		default:
			s.Stopped++
		}
	}
	return s
}
