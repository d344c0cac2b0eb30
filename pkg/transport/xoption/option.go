package xoption

import (
	"fmt"
	"reflect"
)

// Option 是带类型的命名选项标识。
//
// Option 只是一个 key，不携带值；值保存在 [Set] 中。
// 同一 [Pool] 内同名的 Option 是同一个指针，可直接用 == 比较。
type Option[T any] struct {
	id   int
	name string
}

// ID 返回选项在所属池内的序号，从 1 开始。
func (o *Option[T]) ID() int { return o.id }

// Name 返回选项名称。
func (o *Option[T]) Name() string { return o.name }

// String 实现 fmt.Stringer。
func (o *Option[T]) String() string { return fmt.Sprintf("%s(%d)", o.name, o.id) }

// Type 返回选项值的类型。
func (o *Option[T]) Type() reflect.Type { return reflect.TypeFor[T]() }
