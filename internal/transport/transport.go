// Package transport defines the command and push-event channels between the
// control panel and the backend that advertises services.
package transport

import (
	"context"
	"encoding/json"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

// Handler receives the JSON payload of one push event.
type Handler func(payload []byte)

// Unsubscribe releases a push subscription. Calling it twice is harmless.
type Unsubscribe func()

// Transport carries request/response commands and push events.
//
// Call sends command with args (JSON encoded, nil for no arguments) and decodes
// the result into out when out is non-nil. Every returned error wraps one of
// the domain error kinds.
type Transport interface {
	Call(ctx context.Context, command string, args any, out any) error
	Subscribe(event string, handler Handler) (Unsubscribe, error)
}

// Dispatcher executes a command on the backend side.
type Dispatcher interface {
	Dispatch(ctx context.Context, command string, args json.RawMessage) (any, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, command string, args json.RawMessage) (any, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, command string, args json.RawMessage) (any, error) {
	return f(ctx, command, args)
}

// Emitter publishes push events from the backend side.
type Emitter interface {
	Emit(event string, payload any) error
}

// Commands.
const (
	CmdGetServices          = "get_services"
	CmdAddService           = "add_service"
	CmdUpdateService        = "update_service"
	CmdDeleteService        = "delete_service"
	CmdToggleService        = "toggle_service"
	CmdStartAll             = "start_all"
	CmdStopAll              = "stop_all"
	CmdGetHostName          = "get_host_name"
	CmdGetEventLogs         = "get_event_logs"
	CmdClearEventLogs       = "clear_event_logs"
	CmdGetNetworkInterfaces = "get_network_interfaces"
	CmdExportConfig         = "export_config"
	CmdImportConfig         = "import_config"
)

// Commands lists every command name in table order.
var Commands = []string{
	CmdGetServices, CmdAddService, CmdUpdateService, CmdDeleteService,
	CmdToggleService, CmdStartAll, CmdStopAll, CmdGetHostName,
	CmdGetEventLogs, CmdClearEventLogs, CmdGetNetworkInterfaces,
	CmdExportConfig, CmdImportConfig,
}

// Push events.
const (
	EventServicesChanged = "services-changed"
	EventLogEntry        = "log-entry"
)

// ServiceArgs are the arguments of add_service (ID empty) and update_service.
type ServiceArgs struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	ServiceType string            `json:"serviceType"`
	Port        int               `json:"port"`
	TXT         map[string]string `json:"txt"`
	Enabled     bool              `json:"enabled"`
}

// NewServiceArgs builds the arguments for spec. id is empty for add_service.
func NewServiceArgs(id string, spec domain.ServiceSpec) ServiceArgs {
	txt := spec.Attributes
	if txt == nil {
		txt = map[string]string{}
	}
	return ServiceArgs{
		ID:          id,
		Name:        spec.Name,
		ServiceType: spec.ServiceType,
		Port:        spec.Port,
		TXT:         txt,
		Enabled:     spec.Enabled,
	}
}

// Spec returns the service declaration carried by the arguments.
func (a ServiceArgs) Spec() domain.ServiceSpec {
	return domain.ServiceSpec{
		Name:        a.Name,
		ServiceType: a.ServiceType,
		Port:        a.Port,
		Attributes:  a.TXT,
		Enabled:     a.Enabled,
	}
}

// IDArgs are the arguments of delete_service and toggle_service.
type IDArgs struct {
	ID string `json:"id"`
}

// ImportArgs are the arguments of import_config.
type ImportArgs struct {
	JSON string `json:"json"`
}

// DecodeArgs unmarshals command arguments, reporting malformed input as a validation error.
func DecodeArgs(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return domain.Validationf("missing arguments")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.Validationf("malformed arguments: %v", err)
	}
	return nil
}

// DecodePayload unmarshals a push event payload.
func DecodePayload(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return domain.Transportf("malformed event payload: %v", err)
	}
	return nil
}
