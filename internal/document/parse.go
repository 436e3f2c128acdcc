package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Parse reads a configuration document: either the envelope or a bare
// sequence of services, as JSON or YAML. Any structural or field error is an
// ErrValidation and nothing of the document is returned.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, domain.Validationf("configuration document is empty")
	}

	var (
		raw rawDocument
		err error
	)
	switch trimmed[0] {
	case '{', '[':
		raw, err = parseJSON(trimmed)
	default:
		raw, err = parseYAML(trimmed)
	}
	if err != nil {
		return Document{}, err
	}

	return build(raw)
}

func parseJSON(data []byte) (rawDocument, error) {
	if data[0] == '[' {
		var list []rawEntry
		if err := json.Unmarshal(data, &list); err != nil {
			return rawDocument{}, domain.Validationf("invalid JSON document: %v", err)
		}
		return rawDocument{Services: &list}, nil
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawDocument{}, domain.Validationf("invalid JSON document: %v", err)
	}
	return raw, nil
}

func parseYAML(data []byte) (rawDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return rawDocument{}, domain.Validationf("invalid YAML document: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return rawDocument{}, domain.Validationf("configuration document is empty")
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var list []rawEntry
		if err := node.Decode(&list); err != nil {
			return rawDocument{}, domain.Validationf("invalid YAML document: %v", err)
		}
		return rawDocument{Services: &list}, nil
	case yaml.MappingNode:
		var raw rawDocument
		if err := node.Decode(&raw); err != nil {
			return rawDocument{}, domain.Validationf("invalid YAML document: %v", err)
		}
		return raw, nil
	default:
		return rawDocument{}, domain.Validationf("configuration document must be a list of services or an object with a services key")
	}
}

func build(raw rawDocument) (Document, error) {
	if raw.Services == nil {
		return Document{}, domain.Validationf("configuration document has no services key")
	}
	version := CurrentVersion
	if raw.Version != nil {
		version = *raw.Version
	}
	if version != CurrentVersion {
		return Document{}, domain.Validationf("unsupported configuration version %d", version)
	}

	doc := Document{
		Version:  version,
		Hostname: raw.Hostname,
		Services: make([]Entry, 0, len(*raw.Services)),
	}
	for i, re := range *raw.Services {
		entry, err := buildEntry(re)
		if err != nil {
			return Document{}, domain.Validationf("services[%d]: %s", i, domain.MessageOf(err))
		}
		doc.Services = append(doc.Services, entry)
	}
	return doc, nil
}

func buildEntry(re rawEntry) (Entry, error) {
	if re.Port == nil {
		return Entry{}, fmt.Errorf("port is required")
	}
	if re.Enabled == nil {
		return Entry{}, fmt.Errorf("enabled is required")
	}

	spec := domain.ServiceSpec{
		Name:        re.Name,
		ServiceType: re.Type,
		Port:        *re.Port,
		Attributes:  re.TXT,
		Enabled:     *re.Enabled,
	}
	if err := spec.Validate(); err != nil {
		return Entry{}, err
	}
	spec = spec.Normalize()

	return Entry{
		ID:      re.ID,
		Name:    spec.Name,
		Type:    spec.ServiceType,
		Port:    spec.Port,
		TXT:     spec.Attributes,
		Enabled: spec.Enabled,
	}, nil
}
