package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// Client is the control panel side of the NATS transport.
type Client struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
	log     logger.Logger
}

// NewClient uses nc for calls. timeout applies to calls whose context has no deadline.
func NewClient(nc *nats.Conn, prefix string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{nc: nc, prefix: normalizePrefix(prefix), timeout: timeout, log: log}
}

// Call sends command and decodes the reply into out. Without a ctx deadline the
// client timeout applies. A reply arriving after the deadline is dropped; the
// backend's push carries the same outcome.
func (c *Client) Call(ctx context.Context, command string, args any, out any) error {
	if c.nc == nil || c.nc.IsClosed() {
		return domain.Transportf("nats not connected")
	}

	var data []byte
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return domain.Transportf("encode %s arguments: %v", command, err)
		}
		data = b
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.nc.RequestWithContext(ctx, CommandSubject(c.prefix, command), data)
	if err != nil {
		switch {
		case errors.Is(err, nats.ErrNoResponders):
			return domain.Transportf("no backend is serving %s", command)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
			return domain.Transportf("%s timed out", command)
		default:
			return domain.Transportf("call %s: %v", command, err)
		}
	}
	return transport.DecodeReply(msg.Data, out)
}

func (c *Client) Subscribe(event string, handler transport.Handler) (transport.Unsubscribe, error) {
	sub, err := c.nc.Subscribe(EventSubject(c.prefix, event), func(m *nats.Msg) {
		handler(m.Data)
	})
	if err != nil {
		return nil, domain.Transportf("subscribe %s: %v", event, err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil &&
			!errors.Is(err, nats.ErrConnectionClosed) &&
			!errors.Is(err, nats.ErrBadSubscription) {
			c.log.Warn("nats unsubscribe failed", logger.String("event", event), logger.Error(err))
		}
	}, nil
}

// Close drains pending deliveries and closes the connection.
func (c *Client) Close() {
	if c.nc != nil && !c.nc.IsClosed() {
		_ = c.nc.Drain()
		c.nc.Close()
	}
}
