package document

import (
	"maps"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// FromRecords builds the export envelope of a service list. Status is dropped.
func FromRecords(hostname string, list []domain.ServiceRecord) Document {
	doc := Document{
		Version:  CurrentVersion,
		Hostname: hostname,
		Services: make([]Entry, 0, len(list)),
	}
	for _, r := range list {
		doc.Services = append(doc.Services, Entry{
			ID:      r.ID,
			Name:    r.Name,
			Type:    r.ServiceType,
			Port:    r.Port,
			TXT:     maps.Clone(r.Attributes),
			Enabled: r.Enabled,
		})
	}
	return doc
}

// Spec returns the service declaration of e.
func (e Entry) Spec() domain.ServiceSpec {
	return domain.ServiceSpec{
		Name:        e.Name,
		ServiceType: e.Type,
		Port:        e.Port,
		Attributes:  maps.Clone(e.TXT),
		Enabled:     e.Enabled,
	}
}

// Record returns e as a service record with the given runtime status.
func (e Entry) Record(status domain.ServiceStatus) domain.ServiceRecord {
	txt := maps.Clone(e.TXT)
	if txt == nil {
		txt = map[string]string{}
	}
	return domain.ServiceRecord{
		ID:          e.ID,
		Name:        e.Name,
		ServiceType: e.Type,
		Port:        e.Port,
		Attributes:  txt,
		Enabled:     e.Enabled,
		Status:      status,
	}
}
