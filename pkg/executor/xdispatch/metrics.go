package xdispatch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xrpc/xdispatch"

	metricSubmitted = "xrpc.dispatcher.tasks.submitted"
	metricExecuted  = "xrpc.dispatcher.tasks.executed"
	metricPanics    = "xrpc.dispatcher.tasks.panics"
)

type instruments struct {
	submitted metric.Int64Counter
	executed  metric.Int64Counter
	panics    metric.Int64Counter
	attrs     metric.MeasurementOption
}

func newInstruments(provider metric.MeterProvider, name string, strategy WaitStrategyType) (*instruments, error) {
	meter := provider.Meter(instrumentationName)

	submitted, err := meter.Int64Counter(metricSubmitted,
		metric.WithDescription("tasks accepted by the dispatcher"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xdispatch: create counter failed: %w", err)
	}
	executed, err := meter.Int64Counter(metricExecuted,
		metric.WithDescription("tasks run to completion or panic"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xdispatch: create counter failed: %w", err)
	}
	panics, err := meter.Int64Counter(metricPanics,
		metric.WithDescription("tasks that panicked"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xdispatch: create counter failed: %w", err)
	}

	return &instruments{
		submitted: submitted,
		executed:  executed,
		panics:    panics,
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String("dispatcher", name),
			attribute.String("wait_strategy", strategy.String()),
		)),
	}, nil
}

// 计数器在热路径上调用，使用 Background 避免依赖调用方 context。
func (m *instruments) addSubmitted() { m.submitted.Add(context.Background(), 1, m.attrs) }
func (m *instruments) addExecuted()  { m.executed.Add(context.Background(), 1, m.attrs) }
func (m *instruments) addPanic()     { m.panics.Add(context.Background(), 1, m.attrs) }
