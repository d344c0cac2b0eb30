package xtracing

import (
	"strconv"
	"time"
)

// Role 表示事件描述的是调用的哪一端。
type Role int

const (
	// RoleConsumer 消费端（发起调用）。
	RoleConsumer Role = iota + 1
	// RoleProvider 提供端（处理调用）。
	RoleProvider
)

// String 返回 "CONSUMER" 或 "PROVIDER"。
func (r Role) String() string {
	switch r {
	case RoleConsumer:
		return "CONSUMER"
	case RoleProvider:
		return "PROVIDER"
	default:
		return "Role(" + strconv.Itoa(int(r)) + ")"
	}
}

// Event 是一条调用边界事件，只有 ConsumerEvent 与 ProviderEvent 两种实现。
type Event interface {
	Role() Role
	event()
}

// ConsumerEvent 消费端事件。
type ConsumerEvent struct {
	Call        string
	InvokeID    string
	CallInfo    string
	Detail      string
	Destination string
}

// Role 实现 Event。
func (ConsumerEvent) Role() Role { return RoleConsumer }
func (ConsumerEvent) event()     {}

// ProviderEvent 提供端事件。
type ProviderEvent struct {
	Call     string
	InvokeID string
	CallInfo string
	// ElapsedNanos 处理耗时，单位纳秒。
	ElapsedNanos int64
	Destination  string
}

// Role 实现 Event。
func (ProviderEvent) Role() Role { return RoleProvider }
func (ProviderEvent) event()     {}

// Elapsed 以 time.Duration 返回耗时。
func (e ProviderEvent) Elapsed() time.Duration { return time.Duration(e.ElapsedNanos) }
