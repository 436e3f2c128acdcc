package domain

import (
	"strings"

	"golang.org/x/net/dns/dnsmessage"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Normalize trims the name, the service type and every attribute key.
// Attribute values are kept verbatim.
func (s ServiceSpec) Normalize() ServiceSpec {
	out := ServiceSpec{
		Name:        strings.TrimSpace(s.Name),
		ServiceType: strings.TrimSpace(s.ServiceType),
		Port:        s.Port,
		Enabled:     s.Enabled,
		Attributes:  make(map[string]string, len(s.Attributes)),
	}
	for k, v := range s.Attributes {
		out.Attributes[strings.TrimSpace(k)] = v
	}
	return out
}

// Validate checks s before Normalize. Keys that only differ by surrounding
// whitespace collide once trimmed, so they are rejected here.
func (s ServiceSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Validationf("service name is required")
	}
	if strings.TrimSpace(s.ServiceType) == "" {
		return Validationf("service type is required")
	}
	if err := ValidateServiceType(s.ServiceType); err != nil {
		return err
	}
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	return ValidateAttributes(s.Attributes)
}

// ValidatePort checks the 1-65535 range.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return Validationf("port %d out of range (%d-%d)", port, MinPort, MaxPort)
	}
	return nil
}

// ValidateAttributes rejects empty keys, keys that differ only by surrounding
// whitespace, and keys containing '=' (TXT key/value separator).
func ValidateAttributes(attrs map[string]string) error {
	seen := make(map[string]bool, len(attrs))
	for k := range attrs {
		key := strings.TrimSpace(k)
		if key == "" {
			return Validationf("attribute key must not be empty")
		}
		if strings.Contains(key, "=") {
			return Validationf("attribute key %q must not contain '='", key)
		}
		if seen[key] {
			return Validationf("duplicate attribute key %q", key)
		}
		seen[key] = true
	}
	return nil
}

// ValidateServiceType checks that the type, qualified under .local., packs as a DNS name.
// Example: "_http._tcp" -> "_http._tcp.local."
func ValidateServiceType(serviceType string) error {
	fqdn := QualifiedType(serviceType)
	name, err := dnsmessage.NewName(fqdn)
	if err != nil {
		return Validationf("invalid service type %q: %v", serviceType, err)
	}
	msg := dnsmessage.Message{
		Questions: []dnsmessage.Question{{
			Name:  name,
			Type:  dnsmessage.TypePTR,
			Class: dnsmessage.ClassINET,
		}},
	}
	if _, err := msg.Pack(); err != nil {
		return Validationf("invalid service type %q: %v", serviceType, err)
	}
	return nil
}

// QualifiedType returns the fully qualified mDNS form of a service type.
func QualifiedType(serviceType string) string {
	t := strings.TrimSuffix(strings.TrimSpace(serviceType), ".")
	if strings.HasSuffix(t, ".local") {
		return t + "."
	}
	return t + ".local."
}
