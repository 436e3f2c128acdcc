package backend

import (
	"context"
	"encoding/json"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// Dispatch executes one command of the command table.
func (b *Backend) Dispatch(ctx context.Context, command string, args json.RawMessage) (any, error) {
	switch command {
	case transport.CmdGetServices:
		return b.Services(), nil

	case transport.CmdAddService:
		var in transport.ServiceArgs
		if err := transport.DecodeArgs(args, &in); err != nil {
			return nil, err
		}
		return b.AddService(ctx, in.Spec())

	case transport.CmdUpdateService:
		var in transport.ServiceArgs
		if err := transport.DecodeArgs(args, &in); err != nil {
			return nil, err
		}
		if in.ID == "" {
			return nil, domain.Validationf("id is required")
		}
		return b.UpdateService(ctx, in.ID, in.Spec())

	case transport.CmdDeleteService:
		id, err := decodeID(args)
		if err != nil {
			return nil, err
		}
		return b.DeleteService(ctx, id)

	case transport.CmdToggleService:
		id, err := decodeID(args)
		if err != nil {
			return nil, err
		}
		return b.ToggleService(ctx, id)

	case transport.CmdStartAll:
		return b.StartAll(ctx)

	case transport.CmdStopAll:
		return b.StopAll(ctx)

	case transport.CmdGetHostName:
		return b.HostName(), nil

	case transport.CmdGetEventLogs:
		return b.EventLogs(), nil

	case transport.CmdClearEventLogs:
		b.ClearEventLogs()
		return nil, nil

	case transport.CmdGetNetworkInterfaces:
		return b.NetworkInterfaces()

	case transport.CmdExportConfig:
		return b.ExportConfig()

	case transport.CmdImportConfig:
		var in transport.ImportArgs
		if err := transport.DecodeArgs(args, &in); err != nil {
			return nil, err
		}
		return b.ImportConfig(ctx, in.JSON)

	default:
		return nil, domain.Validationf("unknown command %q", command)
	}
}

func decodeID(args json.RawMessage) (string, error) {
	var in transport.IDArgs
	if err := transport.DecodeArgs(args, &in); err != nil {
		return "", err
	}
	if in.ID == "" {
		return "", domain.Validationf("id is required")
	}
	return in.ID, nil
}
