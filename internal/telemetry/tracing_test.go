package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(false, &buf, "mdnspanel", "test")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	_, span := p.Tracer("test").Start(context.Background(), "noop")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("disabled provider wrote %q", buf.String())
	}
}

func TestEnabledProviderWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(true, &buf, "mdnspanel", "test")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	_, span := p.Tracer("test").Start(context.Background(), "call get_services")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "call get_services") {
		t.Errorf("exported spans = %q, want span name", buf.String())
	}
}
