package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

// QueueGroup spreads commands across backend replicas.
const QueueGroup = "mdnspanel-backend"

// Responder is the backend side of the NATS transport: it answers commands
// and publishes push events.
type Responder struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
	log     logger.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewResponder(nc *nats.Conn, prefix string, timeout time.Duration, log logger.Logger) *Responder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Responder{nc: nc, prefix: normalizePrefix(prefix), timeout: timeout, log: log}
}

// Serve answers every command with d until Close.
func (r *Responder) Serve(d transport.Dispatcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return fmt.Errorf("responder already serving")
	}

	sub, err := r.nc.QueueSubscribe(CommandSubject(r.prefix, "*"), QueueGroup, func(m *nats.Msg) {
		r.handle(d, m)
	})
	if err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	r.sub = sub
	r.log.Info("serving commands over nats", logger.String("subject", sub.Subject))
	return nil
}

func (r *Responder) handle(d transport.Dispatcher, m *nats.Msg) {
	command, ok := commandFromSubject(r.prefix, m.Subject)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	result, dErr := d.Dispatch(ctx, command, json.RawMessage(m.Data))
	data, err := transport.EncodeReply(result, dErr)
	if err != nil {
		r.log.Error("encode reply", logger.String("command", command), logger.Error(err))
		data, _ = transport.EncodeReply(nil, domain.Backendf("encode reply: %v", err))
	}

	if err := m.Respond(data); err != nil {
		r.log.Warn("respond failed", logger.String("command", command), logger.Error(err))
		return
	}
	r.log.Debug("command served",
		logger.String("command", command),
		logger.Bool("ok", dErr == nil),
		logger.Duration("elapsed", time.Since(start)))
}

// Emit publishes payload on the event subject.
func (r *Responder) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if r.nc == nil || r.nc.IsClosed() {
		return fmt.Errorf("nats not connected")
	}
	return r.nc.Publish(EventSubject(r.prefix, event), data)
}

// Close stops answering commands. The connection stays open.
func (r *Responder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		return nil
	}
	err := r.sub.Unsubscribe()
	r.sub = nil
	return err
}
