package document

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func TestParseAccepted(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHost string
		want     []Entry
	}{
		{
			name: "json envelope",
			input: `{
  "version": 1,
  "hostname": "lab-host",
  "services": [
    {"id": "a1", "name": " Printer ", "type": "_ipp._tcp", "port": 631, "txt": {"rp": "printers/lab"}, "enabled": true}
  ]
}`,
			wantHost: "lab-host",
			want: []Entry{
				{ID: "a1", Name: "Printer", Type: "_ipp._tcp", Port: 631, TXT: map[string]string{"rp": "printers/lab"}, Enabled: true},
			},
		},
		{
			name:  "json bare list",
			input: `[{"name":"web","type":"_http._tcp","port":8080,"enabled":false,"status":"running"}]`,
			want: []Entry{
				{Name: "web", Type: "_http._tcp", Port: 8080, TXT: map[string]string{}, Enabled: false},
			},
		},
		{
			name: "yaml envelope",
			input: `version: 1
services:
  - name: NAS
    type: _smb._tcp
    port: 445
    txt:
      model: Xserve
    enabled: true
`,
			want: []Entry{
				{Name: "NAS", Type: "_smb._tcp", Port: 445, TXT: map[string]string{"model": "Xserve"}, Enabled: true},
			},
		},
		{
			name: "yaml bare list",
			input: `- name: ssh
  type: _ssh._tcp
  port: 22
  enabled: true
`,
			want: []Entry{
				{Name: "ssh", Type: "_ssh._tcp", Port: 22, TXT: map[string]string{}, Enabled: true},
			},
		},
		{
			name:  "empty envelope",
			input: `{"version":1,"hostname":"","services":[]}`,
			want:  []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Version != CurrentVersion {
				t.Errorf("Version = %d, want %d", doc.Version, CurrentVersion)
			}
			if doc.Hostname != tt.wantHost {
				t.Errorf("Hostname = %q, want %q", doc.Hostname, tt.wantHost)
			}
			if !reflect.DeepEqual(doc.Services, tt.want) {
				t.Errorf("Services = %+v, want %+v", doc.Services, tt.want)
			}
		})
	}
}

func TestParseRejected(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "   "},
		{name: "truncated json", input: `{"services": [`},
		{name: "scalar", input: `just some text`},
		{name: "object without services", input: `{"foo": 1}`},
		{name: "future version", input: `{"version": 2, "services": []}`},
		{name: "port out of range", input: `[{"name":"web","type":"_http._tcp","port":70000,"enabled":true}]`},
		{name: "port missing", input: `[{"name":"web","type":"_http._tcp","enabled":true}]`},
		{name: "port not a number", input: `[{"name":"web","type":"_http._tcp","port":"80","enabled":true}]`},
		{name: "enabled missing", input: `[{"name":"web","type":"_http._tcp","port":80}]`},
		{name: "blank name", input: `[{"name":"  ","type":"_http._tcp","port":80,"enabled":true}]`},
		{name: "blank txt key", input: `[{"name":"web","type":"_http._tcp","port":80,"txt":{" ":"x"},"enabled":true}]`},
		{name: "yaml wrong shape", input: "services: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Parse() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestParseReportsEntryIndex(t *testing.T) {
	input := `[
  {"name":"ok","type":"_http._tcp","port":80,"enabled":true},
  {"name":"bad","type":"_http._tcp","port":0,"enabled":true}
]`
	_, err := Parse([]byte(input))
	if err == nil {
		t.Fatal("Parse() = nil, want error")
	}
	if got := domain.MessageOf(err); !strings.HasPrefix(got, "services[1]") {
		t.Errorf("error message = %q, want services[1] prefix", got)
	}
}
