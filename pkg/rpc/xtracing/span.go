package xtracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 事件名与属性键。
const (
	EventConsumer = "rpc.consumer"
	EventProvider = "rpc.provider"

	AttrCall        = attribute.Key("rpc.call")
	AttrInvokeID    = attribute.Key("rpc.invoke_id")
	AttrCallInfo    = attribute.Key("rpc.call_info")
	AttrDetail      = attribute.Key("rpc.detail")
	AttrDestination = attribute.Key("rpc.destination")
	AttrElapsedNs   = attribute.Key("rpc.elapsed_ns")
)

// SpanRecorder 把事件作为 span event 添加到 ctx 中正在记录的 span 上。
// ctx 中没有记录中的 span 时不做任何事。
type SpanRecorder struct{}

// Record 实现 Recorder。
func (SpanRecorder) Record(ctx context.Context, ev Event) {
	if ctx == nil || ev == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	switch e := ev.(type) {
	case ConsumerEvent:
		span.AddEvent(EventConsumer, trace.WithAttributes(
			AttrCall.String(e.Call),
			AttrInvokeID.String(e.InvokeID),
			AttrCallInfo.String(e.CallInfo),
			AttrDetail.String(e.Detail),
			AttrDestination.String(e.Destination),
		))
	case ProviderEvent:
		span.AddEvent(EventProvider, trace.WithAttributes(
			AttrCall.String(e.Call),
			AttrInvokeID.String(e.InvokeID),
			AttrCallInfo.String(e.CallInfo),
			AttrElapsedNs.Int64(e.ElapsedNanos),
			AttrDestination.String(e.Destination),
		))
	}
}
