package document

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Format selects the encoding of an exported document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", domain.Validationf("unknown document format %q", s)
	}
}

// Encode renders doc. JSON output is indented with two spaces.
func Encode(doc Document, f Format) ([]byte, error) {
	doc = withDefaults(doc)
	switch f {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, domain.Validationf("unknown document format %q", f)
	}
}

// Marshal renders doc as the JSON string sent with import_config.
func Marshal(doc Document) (string, error) {
	data, err := json.Marshal(withDefaults(doc))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func withDefaults(doc Document) Document {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	services := make([]Entry, len(doc.Services))
	for i, e := range doc.Services {
		if e.TXT == nil {
			e.TXT = map[string]string{}
		}
		services[i] = e
	}
	doc.Services = services
	return doc
}
