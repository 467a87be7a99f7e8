// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer("greenboot")
	shutdown              = func(context.Context) error { return nil }
)

// Init configures OpenTelemetry; call this early in main().
// Spans are only exported when telemetry is switched on, otherwise a noop
// provider is installed.
func Init(service string) error {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return nil
	}

	if err := os.MkdirAll(shared.TelemetryDir, shared.DirPermStandard); err != nil {
		return cerr.Wrap(err, "failed to create telemetry directory")
	}

	// JSONL, one span per line
	file, err := os.OpenFile(filepath.Join(shared.TelemetryDir, "telemetry.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, shared.FilePermStandard)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	return InitWithWriter(service, file)
}

// InitWithWriter exports spans to w. The writer is closed by Shutdown when it
// implements io.Closer.
func InitWithWriter(service string, w io.Writer) error {
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		if c, ok := w.(io.Closer); ok {
			_ = c.Close()
		}
		return cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("service.version", shared.Version),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)
	shutdown = func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if c, ok := w.(io.Closer); ok {
			if cerrClose := c.Close(); cerrClose != nil && err == nil {
				err = cerrClose
			}
		}
		return err
	}
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	return shutdown(ctx)
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsEnabled reports whether span export was requested, either with the
// marker file or GREENBOOT_TELEMETRY=1.
func IsEnabled() bool {
	if v := strings.TrimSpace(os.Getenv("GREENBOOT_TELEMETRY")); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	_, err := os.Stat(shared.TelemetryMarkerFile)
	return err == nil
}

// TruncateArgs keeps span attributes bounded.
func TruncateArgs(args []string) string {
	full := strings.Join(args, " ")
	if len(full) > 256 {
		return full[:256] + "..."
	}
	return full
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
