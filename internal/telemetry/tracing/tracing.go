package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// GlobalTracer is a no-op unless the deployment wires an OpenTelemetry SDK
// through the global tracer provider.
var GlobalTracer trace.Tracer = otel.Tracer("blog-service")
