package transport

import (
	"context"
	"time"
)

// Recorder observes transport traffic. internal/metrics implements it.
type Recorder interface {
	ObserveCommand(command string, err error, elapsed time.Duration)
	ObservePush(event string)
}

type instrumented struct {
	next Transport
	rec  Recorder
	now  func() time.Time
}

// Instrumented wraps next and reports every command and push delivery to rec.
func Instrumented(next Transport, rec Recorder) Transport {
	return &instrumented{next: next, rec: rec, now: time.Now}
}

func (t *instrumented) Call(ctx context.Context, command string, args any, out any) error {
	start := t.now()
	err := t.next.Call(ctx, command, args, out)
	t.rec.ObserveCommand(command, err, t.now().Sub(start))
	return err
}

func (t *instrumented) Subscribe(event string, handler Handler) (Unsubscribe, error) {
	return t.next.Subscribe(event, func(payload []byte) {
		t.rec.ObservePush(event)
		handler(payload)
	})
}
