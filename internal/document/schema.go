// Package document reads and writes the serialized service configuration
// used by export_config and import_config.
package document

// CurrentVersion is the only envelope version understood.
const CurrentVersion = 1

// Document is the exported configuration envelope.
// Runtime status is never part of it.
type Document struct {
	Version  int     `json:"version" yaml:"version"`
	Hostname string  `json:"hostname" yaml:"hostname,omitempty"`
	Services []Entry `json:"services" yaml:"services"`
}

// Entry is one declared service.
// ID may be empty in hand-written documents; the backend assigns one on import.
type Entry struct {
	ID      string            `json:"id" yaml:"id,omitempty"`
	Name    string            `json:"name" yaml:"name"`
	Type    string            `json:"type" yaml:"type"`
	Port    int               `json:"port" yaml:"port"`
	TXT     map[string]string `json:"txt" yaml:"txt"`
	Enabled bool              `json:"enabled" yaml:"enabled"`
}

// rawEntry distinguishes missing fields from zero values while parsing.
type rawEntry struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Type    string            `json:"type" yaml:"type"`
	Port    *int              `json:"port" yaml:"port"`
	TXT     map[string]string `json:"txt" yaml:"txt"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
}

type rawDocument struct {
	Version  *int        `json:"version" yaml:"version"`
	Hostname string      `json:"hostname" yaml:"hostname"`
	Services *[]rawEntry `json:"services" yaml:"services"`
}
