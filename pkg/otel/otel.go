package otel

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
)

// Setup installs OTLP exporters for logs, metrics and traces when telemetry
// is enabled. The exporters read their endpoints from the standard
// OTEL_EXPORTER_OTLP_* variables.
func Setup(ctx context.Context, serviceName string) error {
	if !EnableTelemetry {
		return nil
	}

	resource, err := sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithAttributes(attribute.String("service.name", serviceName)),
	)

	if err != nil {
		return err
	}

	return errors.Join(
		setupLogger(ctx, resource),
		setupMeter(ctx, resource),
		setupTracer(ctx, resource),
	)
}

var (
	shutdownMu sync.Mutex
	shutdowns  []func(context.Context) error
)

func registerShutdown(fn func(context.Context) error) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()

	shutdowns = append(shutdowns, fn)
}

// Shutdown flushes and stops every provider installed by Setup.
func Shutdown(ctx context.Context) error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()

	var errs []error

	for _, fn := range shutdowns {
		errs = append(errs, fn(ctx))
	}

	shutdowns = nil

	return errors.Join(errs...)
}

// exporterProtocol resolves the OTLP protocol for a signal, preferring the
// signal specific variable over the shared one.
func exporterProtocol(signal string) string {
	for _, key := range []string{"OTEL_EXPORTER_OTLP_" + signal + "_PROTOCOL", "OTEL_EXPORTER_OTLP_PROTOCOL"} {
		if value := os.Getenv(key); value != "" {
			return strings.ToLower(value)
		}
	}

	return "http/protobuf"
}
