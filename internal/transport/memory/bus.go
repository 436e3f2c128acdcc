// Package memory is an in-process transport. Commands and events still go
// through the JSON wire encoding so behaviour matches the NATS transport.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

type subscriber struct {
	id      uint64
	handler transport.Handler
}

// Bus connects a client to a Dispatcher in the same process.
type Bus struct {
	mu         sync.Mutex
	dispatcher transport.Dispatcher
	subs       map[string][]subscriber
	nextID     uint64
	faults     map[string]error
	offline    bool
	calls      map[string]int
}

func New() *Bus {
	return &Bus{
		subs:   make(map[string][]subscriber),
		faults: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Attach sets the backend that answers commands.
func (b *Bus) Attach(d transport.Dispatcher) {
	b.mu.Lock()
	b.dispatcher = d
	b.mu.Unlock()
}

// InjectFault makes the next call of command fail with err without reaching the backend.
func (b *Bus) InjectFault(command string, err error) {
	b.mu.Lock()
	b.faults[command] = err
	b.mu.Unlock()
}

// SetOffline makes every call fail with a transport error until set back to false.
func (b *Bus) SetOffline(offline bool) {
	b.mu.Lock()
	b.offline = offline
	b.mu.Unlock()
}

// Calls returns how many times command was issued, including failed calls.
func (b *Bus) Calls(command string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[command]
}

// Subscribers returns the number of live subscriptions to event.
func (b *Bus) Subscribers(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

func (b *Bus) Call(ctx context.Context, command string, args any, out any) error {
	if err := ctx.Err(); err != nil {
		return domain.Transportf("call %s: %v", command, err)
	}

	b.mu.Lock()
	b.calls[command]++
	offline := b.offline
	fault, faulted := b.faults[command]
	delete(b.faults, command)
	d := b.dispatcher
	b.mu.Unlock()

	if offline {
		return domain.Transportf("backend unreachable")
	}
	if faulted {
		return fault
	}
	if d == nil {
		return domain.Transportf("no backend attached")
	}

	var raw json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return domain.Transportf("encode %s arguments: %v", command, err)
		}
		raw = data
	}

	result, dErr := d.Dispatch(ctx, command, raw)
	reply, err := transport.EncodeReply(result, dErr)
	if err != nil {
		return domain.Transportf("encode %s reply: %v", command, err)
	}
	return transport.DecodeReply(reply, out)
}

func (b *Bus) Subscribe(event string, handler transport.Handler) (transport.Unsubscribe, error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[event] = append(b.subs[event], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[event]
			for i, s := range list {
				if s.id == id {
					b.subs[event] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}, nil
}

// Emit encodes payload and delivers it synchronously to every subscriber of event.
func (b *Bus) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Publish(event, data)
	return nil
}

// Publish delivers raw bytes to every subscriber of event.
func (b *Bus) Publish(event string, data []byte) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[event]))
	copy(list, b.subs[event])
	b.mu.Unlock()

	for _, s := range list {
		s.handler(data)
	}
}
