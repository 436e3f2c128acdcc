package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestServiceSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ServiceSpec
		wantErr bool
	}{
		{
			name: "valid printer",
			spec: ServiceSpec{Name: "Printer", ServiceType: "_http._tcp", Port: 631, Attributes: map[string]string{}},
		},
		{
			name: "valid with txt",
			spec: ServiceSpec{Name: "NAS", ServiceType: "_smb._tcp", Port: 445, Attributes: map[string]string{"model": "Xserve"}},
		},
		{
			name: "already qualified type",
			spec: ServiceSpec{Name: "web", ServiceType: "_http._tcp.local.", Port: 80},
		},
		{
			name:    "empty name",
			spec:    ServiceSpec{Name: "   ", ServiceType: "_http._tcp", Port: 80},
			wantErr: true,
		},
		{
			name:    "empty type",
			spec:    ServiceSpec{Name: "web", ServiceType: "", Port: 80},
			wantErr: true,
		},
		{
			name:    "port too high",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 70000},
			wantErr: true,
		},
		{
			name:    "port zero",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 0},
			wantErr: true,
		},
		{
			name:    "empty label in type",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http.._tcp", Port: 80},
			wantErr: true,
		},
		{
			name:    "label too long",
			spec:    ServiceSpec{Name: "web", ServiceType: "_" + strings.Repeat("x", 70) + "._tcp", Port: 80},
			wantErr: true,
		},
		{
			name:    "empty attribute key",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80, Attributes: map[string]string{" ": "v"}},
			wantErr: true,
		},
		{
			name:    "attribute key with equals",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80, Attributes: map[string]string{"a=b": "v"}},
			wantErr: true,
		},
		{
			name:    "attribute keys colliding after trim",
			spec:    ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80, Attributes: map[string]string{"path": "/", " path": "/x"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() = nil, want error")
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestServiceSpecNormalize(t *testing.T) {
	spec := ServiceSpec{
		Name:        "  Printer ",
		ServiceType: " _ipp._tcp\t",
		Port:        631,
		Attributes:  map[string]string{" rp ": " printers/lab "},
		Enabled:     true,
	}

	got := spec.Normalize()

	if got.Name != "Printer" || got.ServiceType != "_ipp._tcp" {
		t.Errorf("Normalize() name/type = %q/%q", got.Name, got.ServiceType)
	}
	if v, ok := got.Attributes["rp"]; !ok || v != " printers/lab " {
		t.Errorf("Normalize() attributes = %v, want trimmed key and verbatim value", got.Attributes)
	}
	if _, ok := spec.Attributes[" rp "]; !ok {
		t.Error("Normalize() mutated its receiver")
	}
	if !got.Enabled || got.Port != 631 {
		t.Errorf("Normalize() lost port/enabled: %+v", got)
	}
}

func TestQualifiedType(t *testing.T) {
	tests := map[string]string{
		"_http._tcp":        "_http._tcp.local.",
		"_http._tcp.":       "_http._tcp.local.",
		"_http._tcp.local":  "_http._tcp.local.",
		"_http._tcp.local.": "_http._tcp.local.",
	}
	for in, want := range tests {
		if got := QualifiedType(in); got != want {
			t.Errorf("QualifiedType(%q) = %q, want %q", in, got, want)
		}
	}
}
