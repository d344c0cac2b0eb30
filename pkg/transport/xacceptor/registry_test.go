package xacceptor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xrpc/pkg/transport/xacceptor"
)

type EchoService struct{}

func (*EchoService) Echo(s string) string  { return s }
func (*EchoService) Ping() string          { return "pong" }
func (*EchoService) internal() string      { return "" } //nolint:unused // 验证非导出方法不被收集
func (EchoService) Describe() string       { return "echo" }
func (*EchoService) Add(a, b int) int      { return a + b }
func (*EchoService) Sum(xs ...int) (n int) { return len(xs) }

func TestServiceRegistry_Defaults(t *testing.T) {
	reg := xacceptor.NewServiceRegistry()

	w, err := reg.Provider(&EchoService{}).Register()
	require.NoError(t, err)
	assert.Equal(t, "default", w.Meta.Group)
	assert.Equal(t, "EchoService", w.Meta.Name)
	assert.Equal(t, "1.0.0", w.Meta.Version)
	assert.Equal(t, 100, w.Weight)
	assert.Equal(t, 1, w.ConnCount)
	assert.Equal(t, []string{"Add", "Describe", "Echo", "Ping", "Sum"}, w.Methods)
	assert.Equal(t, "default/EchoService/1.0.0", w.Key())

	got, ok := reg.Lookup(w.Key())
	require.True(t, ok)
	assert.Same(t, w, got)
}

func TestServiceRegistry_Builder(t *testing.T) {
	reg := xacceptor.NewServiceRegistry()

	w, err := reg.Provider(EchoService{}).
		Group("demo").Name("Echo").Version("2.0").
		Weight(50).ConnCount(4).
		Register()
	require.NoError(t, err)
	assert.Equal(t, "demo/Echo/2.0", w.Key())
	assert.Equal(t, 50, w.Weight)
	assert.Equal(t, 4, w.ConnCount)
	// 值接收者只包含值方法
	assert.Equal(t, []string{"Describe"}, w.Methods)

	rec := w.Record("10.0.0.1", 18090, "id-1")
	assert.Equal(t, w.Meta, rec.Service)
	assert.Equal(t, "10.0.0.1:18090", rec.Addr())
	assert.Equal(t, "id-1", rec.InstanceID)
	assert.Equal(t, 50, rec.Weight)
	assert.Equal(t, 4, rec.ConnCount)
	require.NoError(t, rec.Validate())
}

func TestServiceRegistry_Duplicate(t *testing.T) {
	reg := xacceptor.NewServiceRegistry()

	_, err := reg.Provider(&EchoService{}).Group("demo").Register()
	require.NoError(t, err)
	_, err = reg.Provider(&EchoService{}).Group("demo").Register()
	assert.ErrorIs(t, err, xacceptor.ErrServiceExists)

	// 不同版本不冲突
	_, err = reg.Provider(&EchoService{}).Group("demo").Version("2.0.0").Register()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "demo/EchoService/1.0.0", all[0].Key())
	assert.Equal(t, "demo/EchoService/2.0.0", all[1].Key())

	require.NoError(t, reg.Unregister("demo/EchoService/1.0.0"))
	assert.ErrorIs(t, reg.Unregister("demo/EchoService/1.0.0"), xacceptor.ErrServiceNotFound)
	_, ok := reg.Lookup("demo/EchoService/1.0.0")
	assert.False(t, ok)
}

func TestServiceRegistry_Invalid(t *testing.T) {
	reg := xacceptor.NewServiceRegistry()

	_, err := reg.Provider(nil).Register()
	assert.ErrorIs(t, err, xacceptor.ErrNilProvider)

	_, err = reg.Provider(&EchoService{}).Group("a/b").Register()
	assert.ErrorIs(t, err, xacceptor.ErrInvalidService)

	_, err = reg.Provider(&EchoService{}).Version("").Register()
	assert.ErrorIs(t, err, xacceptor.ErrInvalidService)

	// 匿名类型没有类型名，需显式设置
	_, err = reg.Provider(struct{}{}).Register()
	assert.ErrorIs(t, err, xacceptor.ErrInvalidService)

	assert.Zero(t, reg.Len())
}
