package transport

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func TestReplyRoundTrip(t *testing.T) {
	data, err := EncodeReply([]string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("EncodeReply() error = %v", err)
	}

	var out []string
	if err := DecodeReply(data, &out); err != nil {
		t.Fatalf("DecodeReply() error = %v", err)
	}
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Errorf("DecodeReply() result = %v", out)
	}
}

func TestReplyCarriesErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "validation", err: domain.Validationf("bad port"), want: domain.ErrValidation},
		{name: "not found", err: domain.NotFoundf("service 'x' not found"), want: domain.ErrNotFound},
		{name: "backend", err: domain.Backendf("port already bound"), want: domain.ErrBackend},
		{name: "plain error", err: errors.New("boom"), want: domain.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeReply("ignored", tt.err)
			if err != nil {
				t.Fatalf("EncodeReply() error = %v", err)
			}
			got := DecodeReply(data, nil)
			if !errors.Is(got, tt.want) {
				t.Fatalf("DecodeReply() = %v, want kind %v", got, tt.want)
			}
			if domain.MessageOf(got) != domain.MessageOf(tt.err) {
				t.Errorf("message = %q, want %q", domain.MessageOf(got), domain.MessageOf(tt.err))
			}
		})
	}
}

func TestDecodeReplyMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "not json", data: "{", want: domain.ErrTransport},
		{name: "wrong result shape", data: `{"ok":true,"result":"text"}`, want: domain.ErrTransport},
		{name: "failure without error", data: `{"ok":false}`, want: domain.ErrBackend},
		{name: "missing result", data: `{"ok":true}`, want: domain.ErrTransport},
		{name: "null result", data: `{"ok":true,"result":null}`, want: domain.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []int
			if err := DecodeReply([]byte(tt.data), &out); !errors.Is(err, tt.want) {
				t.Errorf("DecodeReply(%s) = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}

func TestServiceArgsNilAttributes(t *testing.T) {
	args := NewServiceArgs("", domain.ServiceSpec{Name: "web", ServiceType: "_http._tcp", Port: 80})
	if args.TXT == nil {
		t.Error("NewServiceArgs() left TXT nil, want empty map")
	}
	if spec := args.Spec(); spec.Name != "web" || spec.Port != 80 {
		t.Errorf("Spec() = %+v", spec)
	}
}
