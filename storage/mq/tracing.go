package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "sevenday/rabbitmq"

// headerCarrier 让 trace context 随消息头传递
type headerCarrier amqp.Table

func (h headerCarrier) Get(key string) string {
	v, ok := h[key].(string)
	if !ok {
		return ""
	}
	return v
}

func (h headerCarrier) Set(key, value string) {
	h[key] = value
}

func (h headerCarrier) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}

func startPublishSpan(ctx context.Context, exchange, routingKey, messageID string) (context.Context, trace.Span, amqp.Table) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.destination.name", exchange),
			attribute.String("messaging.rabbitmq.destination.routing_key", routingKey),
			attribute.String("messaging.message.id", messageID),
		),
	)

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))
	return ctx, span, headers
}

func startConsumeSpan(ctx context.Context, queue string, msg amqp.Delivery) (context.Context, trace.Span) {
	if msg.Headers != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Headers))
	}
	return otel.Tracer(tracerName).Start(ctx, "rabbitmq.consume "+queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.source.name", queue),
			attribute.String("messaging.message.id", msg.MessageId),
			attribute.Bool("messaging.rabbitmq.redelivered", msg.Redelivered),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
