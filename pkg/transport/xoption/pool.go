package xoption

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

type entry struct {
	opt any
	typ reflect.Type
}

// Pool 是选项注册表，名称到选项实例一一对应。
//
// 零值不可用，使用 [NewPool] 创建。Pool 并发安全。
type Pool struct {
	mu     sync.Mutex
	byName map[string]entry
	nextID int
}

// NewPool 创建空的选项池。
func NewPool() *Pool {
	return &Pool{byName: make(map[string]entry), nextID: 1}
}

var defaultPool = NewPool()

// Default 返回进程级默认选项池。
func Default() *Pool { return defaultPool }

// Exists 报告名称是否已注册，无副作用。
func (p *Pool) Exists(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byName[name]
	return ok
}

// Len 返回已注册的选项数。
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byName)
}

// Names 返回按名称排序的已注册选项名。
func (p *Pool) Names() []string {
	p.mu.Lock()
	names := make([]string, 0, len(p.byName))
	for name := range p.byName {
		names = append(names, name)
	}
	p.mu.Unlock()
	slices.Sort(names)
	return names
}

// lookup 调用方需持有 p.mu。
func lookup[T any](p *Pool, name string) (*Option[T], bool, error) {
	e, ok := p.byName[name]
	if !ok {
		return nil, false, nil
	}
	opt, typed := e.opt.(*Option[T])
	if !typed {
		return nil, true, fmt.Errorf("%w: %q registered as %s, requested %s",
			ErrTypeMismatch, name, e.typ, reflect.TypeFor[T]())
	}
	return opt, true, nil
}

// register 调用方需持有 p.mu，且已确认名称未注册。
func register[T any](p *Pool, name string) *Option[T] {
	opt := &Option[T]{id: p.nextID, name: name}
	p.nextID++
	p.byName[name] = entry{opt: opt, typ: reflect.TypeFor[T]()}
	return opt
}

// GetOrCreate 返回名为 name 的选项，不存在则创建。
//
// created 为 true 表示本次调用完成了注册。并发调用时至多一个调用方得到 true。
func GetOrCreate[T any](p *Pool, name string) (opt *Option[T], created bool, err error) {
	if name == "" {
		return nil, false, ErrEmptyName
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	opt, found, err := lookup[T](p, name)
	if err != nil || found {
		return opt, false, err
	}
	return register[T](p, name), true, nil
}

// Get 等价于 GetOrCreate，忽略 created 标志。
func Get[T any](p *Pool, name string) (*Option[T], error) {
	opt, _, err := GetOrCreate[T](p, name)
	return opt, err
}

// Create 独占创建选项，名称已存在时返回 [ErrConflict]，池保持不变。
func Create[T any](p *Pool, name string) (*Option[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrConflict, name)
	}
	return register[T](p, name), nil
}

// ValueOf 在默认池中获取或创建选项。
func ValueOf[T any](name string) (*Option[T], error) {
	return Get[T](defaultPool, name)
}

// MustValueOf 同 ValueOf，出错时 panic。用于包级变量初始化。
func MustValueOf[T any](name string) *Option[T] {
	opt, err := ValueOf[T](name)
	if err != nil {
		panic(err)
	}
	return opt
}

// ScopedName 返回以 owner 的类型限定的选项名 "<类型>#<name>"，
// 用于组件私有选项，避免与全局名称冲突。
func ScopedName(owner any, name string) (string, error) {
	typ := reflect.TypeOf(owner)
	if typ == nil {
		return "", ErrNilOwner
	}
	if name == "" {
		return "", ErrEmptyName
	}
	return typ.String() + "#" + name, nil
}

// GetScoped 按 [ScopedName] 限定名称后获取或创建选项。
func GetScoped[T any](p *Pool, owner any, name string) (*Option[T], error) {
	scoped, err := ScopedName(owner, name)
	if err != nil {
		return nil, err
	}
	return Get[T](p, scoped)
}

// ValueOfScoped 在默认池中按限定名称获取或创建选项。
func ValueOfScoped[T any](owner any, name string) (*Option[T], error) {
	return GetScoped[T](defaultPool, owner, name)
}

// NewInstance 在默认池中独占创建选项。
func NewInstance[T any](name string) (*Option[T], error) {
	return Create[T](defaultPool, name)
}

// Exists 报告默认池中名称是否已注册。
func Exists(name string) bool {
	return defaultPool.Exists(name)
}
