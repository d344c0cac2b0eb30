package xacceptor

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/omeyang/xrpc/pkg/registry/xdirectory"
)

const (
	defaultGroup     = "default"
	defaultVersion   = "1.0.0"
	defaultWeight    = 100
	defaultConnCount = 1
)

// ServiceWrapper 是已注册的服务提供者及其元数据。
type ServiceWrapper struct {
	Provider  any
	Meta      xdirectory.ServiceMeta
	Weight    int
	ConnCount int
	// Methods 提供者的导出方法名，按字典序排列。
	Methods []string
}

// Key 返回 group/name/version。
func (w *ServiceWrapper) Key() string { return w.Meta.Key() }

// Record 生成发布到目录的记录。
func (w *ServiceWrapper) Record(host string, port int, instanceID string) xdirectory.Record {
	return xdirectory.Record{
		Service:    w.Meta,
		Host:       host,
		Port:       port,
		InstanceID: instanceID,
		Weight:     w.Weight,
		ConnCount:  w.ConnCount,
		Methods:    slices.Clone(w.Methods),
	}
}

// ServiceRegistry 保存一个 Acceptor 提供的服务，并发安全。
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]*ServiceWrapper
}

// NewServiceRegistry 创建空注册表。
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]*ServiceWrapper)}
}

// Provider 开始注册一个服务提供者。
//
//	w, err := reg.Provider(&EchoService{}).Group("demo").Version("1.0.0").Register()
func (r *ServiceRegistry) Provider(p any) *ServiceBuilder {
	return &ServiceBuilder{
		registry:  r,
		provider:  p,
		group:     defaultGroup,
		version:   defaultVersion,
		weight:    defaultWeight,
		connCount: defaultConnCount,
	}
}

// Lookup 按 group/name/version 查找服务。
func (r *ServiceRegistry) Lookup(key string) (*ServiceWrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.services[key]
	return w, ok
}

// All 返回全部服务，按 key 排序。
func (r *ServiceRegistry) All() []*ServiceWrapper {
	r.mu.RLock()
	out := make([]*ServiceWrapper, 0, len(r.services))
	for _, w := range r.services {
		out = append(out, w)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *ServiceWrapper) int { return cmp.Compare(a.Key(), b.Key()) })
	return out
}

// Len 返回服务数。
func (r *ServiceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Unregister 删除服务。不影响已发布到目录的记录。
func (r *ServiceRegistry) Unregister(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[key]; !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, key)
	}
	delete(r.services, key)
	return nil
}

func (r *ServiceRegistry) add(w *ServiceWrapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := w.Key()
	if _, ok := r.services[key]; ok {
		return fmt.Errorf("%w: %s", ErrServiceExists, key)
	}
	r.services[key] = w
	return nil
}

// ServiceBuilder 逐项设置服务元数据，最后调用 Register。
type ServiceBuilder struct {
	registry  *ServiceRegistry
	provider  any
	group     string
	name      string
	version   string
	weight    int
	connCount int
}

// Group 设置服务分组，默认 "default"。
func (b *ServiceBuilder) Group(group string) *ServiceBuilder {
	b.group = group
	return b
}

// Name 设置服务名，默认取提供者的类型名。
func (b *ServiceBuilder) Name(name string) *ServiceBuilder {
	b.name = name
	return b
}

// Version 设置服务版本，默认 "1.0.0"。
func (b *ServiceBuilder) Version(version string) *ServiceBuilder {
	b.version = version
	return b
}

// Weight 设置负载权重，默认 100，非正值被忽略。
func (b *ServiceBuilder) Weight(weight int) *ServiceBuilder {
	if weight > 0 {
		b.weight = weight
	}
	return b
}

// ConnCount 设置建议的客户端连接数，默认 1，非正值被忽略。
func (b *ServiceBuilder) ConnCount(n int) *ServiceBuilder {
	if n > 0 {
		b.connCount = n
	}
	return b
}

// Register 校验元数据并写入注册表。
func (b *ServiceBuilder) Register() (*ServiceWrapper, error) {
	if b.provider == nil {
		return nil, ErrNilProvider
	}
	typ := reflect.TypeOf(b.provider)
	name := b.name
	if name == "" {
		name = providerName(typ)
	}
	meta := xdirectory.ServiceMeta{Group: b.group, Name: name, Version: b.version}
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	w := &ServiceWrapper{
		Provider:  b.provider,
		Meta:      meta,
		Weight:    b.weight,
		ConnCount: b.connCount,
		Methods:   exportedMethods(typ),
	}
	if err := b.registry.add(w); err != nil {
		return nil, err
	}
	return w, nil
}

func providerName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Name()
}

// exportedMethods 返回方法集中的导出方法，reflect 已按字典序排列。
func exportedMethods(typ reflect.Type) []string {
	methods := make([]string, 0, typ.NumMethod())
	for i := range typ.NumMethod() {
		methods = append(methods, typ.Method(i).Name)
	}
	return methods
}

func validateMeta(meta xdirectory.ServiceMeta) error {
	fields := [...]struct{ name, value string }{
		{"group", meta.Group}, {"name", meta.Name}, {"version", meta.Version},
	}
	for _, f := range fields {
		if f.value == "" || strings.Contains(f.value, "/") {
			return fmt.Errorf("%w: %s %q", ErrInvalidService, f.name, f.value)
		}
	}
	return nil
}
