package xoption

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"
	"time"
)

// Set 保存一组选项值。零值可用，并发安全。
type Set struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSet 创建空的选项集合。
func NewSet() *Set {
	return &Set{}
}

// SetValue 设置选项值，覆盖已有值。
func SetValue[T any](s *Set, opt *Option[T], v T) error {
	if opt == nil {
		return ErrNilOption
	}
	s.store(opt.name, v)
	return nil
}

// Value 返回选项值及是否已设置。
func Value[T any](s *Set, opt *Option[T]) (T, bool) {
	var zero T
	if s == nil || opt == nil {
		return zero, false
	}
	s.mu.RLock()
	raw, ok := s.values[opt.name]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// ValueOr 返回选项值，未设置时返回 def。
func ValueOr[T any](s *Set, opt *Option[T], def T) T {
	if v, ok := Value(s, opt); ok {
		return v
	}
	return def
}

func (s *Set) store(name string, v any) {
	s.mu.Lock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = v
	s.mu.Unlock()
}

// Has 报告名为 name 的选项是否已设置。
func (s *Set) Has(name string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[name]
	return ok
}

// Len 返回已设置的选项数。
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Names 返回已设置选项的名称，按名称排序。
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	s.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Apply 按名称批量设置选项值，名称必须已在默认池中注册。
func (s *Set) Apply(values map[string]any) error {
	return s.ApplyPool(defaultPool, values)
}

// ApplyPool 同 Apply，名称在 p 中解析。
//
// 配置解码出的数值类型（如 float64、int64）会转换为选项声明的数值类型，
// 带小数或超出目标范围的值返回 [ErrTypeMismatch]。
// time.Duration 选项额外接受 "5s" 形式的字符串。
// 任一名称失败时返回错误，之前已成功的条目保留。
func (s *Set) ApplyPool(p *Pool, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		p.mu.Lock()
		e, ok := p.byName[name]
		p.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
		v, err := convert(values[name], e.typ)
		if err != nil {
			return fmt.Errorf("xoption: option %q: %w", name, err)
		}
		s.store(name, v)
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func convert(raw any, typ reflect.Type) (any, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil value for %s", ErrTypeMismatch, typ)
	}
	rv := reflect.ValueOf(raw)
	if rv.Type() == typ {
		return raw, nil
	}
	if typ == reflect.TypeFor[time.Duration]() {
		if str, ok := raw.(string); ok {
			d, err := time.ParseDuration(str)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
			}
			return d, nil
		}
	}
	if isNumeric(rv.Kind()) && isNumeric(typ.Kind()) {
		return convertNumber(rv, typ)
	}
	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrTypeMismatch, raw, typ)
}

// convertNumber 在数值类型间转换，拒绝截断小数与溢出目标类型的值。
func convertNumber(rv reflect.Value, typ reflect.Type) (any, error) {
	out := reflect.New(typ).Elem()
	mismatch := func() (any, error) {
		return nil, fmt.Errorf("%w: %v does not fit %s", ErrTypeMismatch, rv.Interface(), typ)
	}

	switch {
	case rv.CanInt():
		i := rv.Int()
		switch {
		case out.CanInt():
			if out.OverflowInt(i) {
				return mismatch()
			}
			out.SetInt(i)
		case out.CanUint():
			if i < 0 || out.OverflowUint(uint64(i)) {
				return mismatch()
			}
			out.SetUint(uint64(i))
		default:
			out.SetFloat(float64(i))
		}
	case rv.CanUint():
		u := rv.Uint()
		switch {
		case out.CanInt():
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return mismatch()
			}
			out.SetInt(int64(u))
		case out.CanUint():
			if out.OverflowUint(u) {
				return mismatch()
			}
			out.SetUint(u)
		default:
			out.SetFloat(float64(u))
		}
	default:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return mismatch()
		}
		switch {
		case out.CanFloat():
			if out.OverflowFloat(f) {
				return mismatch()
			}
			out.SetFloat(f)
		case f != math.Trunc(f):
			return mismatch()
		case out.CanInt():
			if f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return mismatch()
			}
			out.SetInt(int64(f))
		default:
			if f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return mismatch()
			}
			out.SetUint(uint64(f))
		}
	}
	return out.Interface(), nil
}

// Group 区分监听 socket 与已接受连接两组选项。
type Group struct {
	// Parent 作用于监听 socket。
	Parent *Set
	// Child 作用于每个已接受的连接。
	Child *Set
}

// NewGroup 创建 Parent 与 Child 均为空集合的 Group。
func NewGroup() Group {
	return Group{Parent: NewSet(), Child: NewSet()}
}
