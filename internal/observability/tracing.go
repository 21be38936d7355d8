package observability

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

const serviceName = "nihongo-backend"

// SetupTracing installs a global TracerProvider. Tracing is off unless
// OTEL_TRACES_ENABLED is truthy; the exporter writes to stdout.
func SetupTracing(log *logger.Logger) (shutdown func(context.Context) error, err error) {
	enabled := strings.TrimSpace(os.Getenv("OTEL_TRACES_ENABLED"))
	switch strings.ToLower(enabled) {
	case "1", "true", "yes", "on":
	default:
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("stdouttrace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	log.Info("Tracing enabled", "exporter", "stdout", "service", serviceName)
	return tp.Shutdown, nil
}
