package xacceptor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xrpc/xacceptor"

	metricAccepted = "xrpc.acceptor.connections.accepted"
	metricRejected = "xrpc.acceptor.requests.rejected"
)

type instruments struct {
	accepted metric.Int64Counter
	rejected metric.Int64Counter
	attrs    metric.MeasurementOption
}

func newInstruments(provider metric.MeterProvider, port int, id string) (*instruments, error) {
	meter := provider.Meter(instrumentationName)

	accepted, err := meter.Int64Counter(metricAccepted,
		metric.WithDescription("connections handed to a handler"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xacceptor: create counter failed: %w", err)
	}
	rejected, err := meter.Int64Counter(metricRejected,
		metric.WithDescription("requests the executor refused"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xacceptor: create counter failed: %w", err)
	}
	return &instruments{
		accepted: accepted,
		rejected: rejected,
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.Int("port", port),
			attribute.String("acceptor", id),
		)),
	}, nil
}

func (m *instruments) addAccepted() { m.accepted.Add(context.Background(), 1, m.attrs) }
func (m *instruments) addRejected() { m.rejected.Add(context.Background(), 1, m.attrs) }
