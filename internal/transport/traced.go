package transport

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

type traced struct {
	next   Transport
	tracer trace.Tracer
}

// Traced wraps next so every command and every push delivery gets a span.
func Traced(next Transport, tracer trace.Tracer) Transport {
	return &traced{next: next, tracer: tracer}
}

func (t *traced) Call(ctx context.Context, command string, args any, out any) error {
	ctx, span := t.tracer.Start(ctx, "call "+command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("mdnspanel.command", command)),
	)
	defer span.End()

	err := t.next.Call(ctx, command, args, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.MessageOf(err))
		span.SetAttributes(attribute.String("mdnspanel.error_kind", domain.KindOf(err)))
	}
	return err
}

func (t *traced) Subscribe(event string, handler Handler) (Unsubscribe, error) {
	return t.next.Subscribe(event, func(payload []byte) {
		_, span := t.tracer.Start(context.Background(), "push "+event,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("mdnspanel.event", event),
				attribute.Int("mdnspanel.payload_bytes", len(payload)),
			),
		)
		defer span.End()
		handler(payload)
	})
}
