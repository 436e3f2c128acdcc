// Package natsbus carries commands and push events over NATS.
//
// Commands are request/reply on <prefix>.cmd.<name>; push events are
// published on <prefix>.event.<name>.
package natsbus

import (
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

const DefaultPrefix = "mdnspanel"

type ConnectOptions struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
}

// Dial opens a connection that reconnects forever.
func Dial(opts ConnectOptions, log logger.Logger) (*nats.Conn, error) {
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", logger.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
	}
	return nats.Connect(opts.URL, natsOpts...)
}

// CommandSubject returns the request subject of command.
func CommandSubject(prefix, command string) string {
	return normalizePrefix(prefix) + ".cmd." + command
}

// EventSubject returns the publish subject of event.
func EventSubject(prefix, event string) string {
	return normalizePrefix(prefix) + ".event." + event
}

// commandFromSubject extracts the command name, reporting false for foreign subjects.
func commandFromSubject(prefix, subject string) (string, bool) {
	p := normalizePrefix(prefix) + ".cmd."
	if !strings.HasPrefix(subject, p) {
		return "", false
	}
	cmd := strings.TrimPrefix(subject, p)
	return cmd, cmd != ""
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}
