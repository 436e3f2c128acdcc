package natsbus

import "testing"

func TestSubjects(t *testing.T) {
	tests := []struct {
		prefix  string
		cmd     string
		event   string
		wantCmd string
		wantEvt string
	}{
		{prefix: "", cmd: "get_services", event: "log-entry", wantCmd: "mdnspanel.cmd.get_services", wantEvt: "mdnspanel.event.log-entry"},
		{prefix: "lab.", cmd: "stop_all", event: "services-changed", wantCmd: "lab.cmd.stop_all", wantEvt: "lab.event.services-changed"},
		{prefix: " home.mdns ", cmd: "add_service", event: "log-entry", wantCmd: "home.mdns.cmd.add_service", wantEvt: "home.mdns.event.log-entry"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCmd, func(t *testing.T) {
			if got := CommandSubject(tt.prefix, tt.cmd); got != tt.wantCmd {
				t.Errorf("CommandSubject() = %q, want %q", got, tt.wantCmd)
			}
			if got := EventSubject(tt.prefix, tt.event); got != tt.wantEvt {
				t.Errorf("EventSubject() = %q, want %q", got, tt.wantEvt)
			}
			cmd, ok := commandFromSubject(tt.prefix, tt.wantCmd)
			if !ok || cmd != tt.cmd {
				t.Errorf("commandFromSubject(%q) = %q, %v", tt.wantCmd, cmd, ok)
			}
		})
	}
}

func TestCommandFromForeignSubject(t *testing.T) {
	if _, ok := commandFromSubject("mdnspanel", "other.cmd.get_services"); ok {
		t.Error("commandFromSubject() accepted a foreign prefix")
	}
	if _, ok := commandFromSubject("mdnspanel", "mdnspanel.cmd."); ok {
		t.Error("commandFromSubject() accepted an empty command")
	}
}
