package xtracing

import (
	"strconv"
	"strings"
	"time"
)

// Formatter 把事件渲染为一行文本。
type Formatter interface {
	Format(ev Event) string
}

// FormatterFunc 把函数适配为 Formatter。
type FormatterFunc func(ev Event) string

// Format 实现 Formatter。
func (f FormatterFunc) Format(ev Event) string { return f(ev) }

// TextFormatter 默认格式：
//
//	[Consumer] - <call>, invokeId: <id>, callInfo: <info>#<detail>, on <dest>
//	[Provider] - <call>, invokeId: <id>, callInfo: <info>, elapsed: <ms> millis, on <dest>
//
// 毫秒由纳秒截断得到，1500000ns 渲染为 1。
type TextFormatter struct{}

// Format 实现 Formatter，未知事件返回空串。
func (TextFormatter) Format(ev Event) string {
	var b strings.Builder
	switch e := ev.(type) {
	case ConsumerEvent:
		b.Grow(64 + len(e.Call) + len(e.InvokeID) + len(e.CallInfo) + len(e.Detail) + len(e.Destination))
		b.WriteString("[Consumer] - ")
		b.WriteString(e.Call)
		b.WriteString(", invokeId: ")
		b.WriteString(e.InvokeID)
		b.WriteString(", callInfo: ")
		b.WriteString(e.CallInfo)
		b.WriteByte('#')
		b.WriteString(e.Detail)
		b.WriteString(", on ")
		b.WriteString(e.Destination)
	case ProviderEvent:
		b.Grow(80 + len(e.Call) + len(e.InvokeID) + len(e.CallInfo) + len(e.Destination))
		b.WriteString("[Provider] - ")
		b.WriteString(e.Call)
		b.WriteString(", invokeId: ")
		b.WriteString(e.InvokeID)
		b.WriteString(", callInfo: ")
		b.WriteString(e.CallInfo)
		b.WriteString(", elapsed: ")
		b.WriteString(strconv.FormatInt(e.ElapsedNanos/int64(time.Millisecond), 10))
		b.WriteString(" millis, on ")
		b.WriteString(e.Destination)
	}
	return b.String()
}
