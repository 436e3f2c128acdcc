package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"192.168.1.0/24", " 10.0.0.7 ", "fd00::/8", "not-an-ip", ""})

	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.42", true},
		{"192.168.2.1", false},
		{"10.0.0.7", true},
		{"10.0.0.8", false},
		{"::ffff:192.168.1.9", true},
		{"fd12::1", true},
		{"2001:db8::1", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := m.Allow(tt.ip); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if m.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("matcher with only invalid rules should be empty")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "10.1.2.3:5555", want: "10.1.2.3"},
		{name: "untrusted xff ignored", remote: "10.1.2.3:5555", xff: "1.1.1.1", want: "10.1.2.3"},
		{name: "trusted xff first hop", remote: "127.0.0.1:1", xff: "1.1.1.1, 2.2.2.2", trustProxy: true, want: "1.1.1.1"},
		{name: "trusted real ip", remote: "127.0.0.1:1", realIP: "3.3.3.3", trustProxy: true, want: "3.3.3.3"},
		{name: "ipv6 remote", remote: "[fd00::1]:8080", want: "fd00::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
