package xdispatch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/goleak"

	"github.com/omeyang/xrpc/pkg/executor/xdispatch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func closeDispatcher(t *testing.T, d *xdispatch.Dispatcher) {
	t.Helper()
	t.Cleanup(func() {
		assert.NoError(t, d.Close())
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name              string
		workers, capacity int
		want              error
	}{
		{"zero capacity", 1, 0, xdispatch.ErrInvalidCapacity},
		{"negative capacity", 1, -8, xdispatch.ErrInvalidCapacity},
		{"zero workers", 0, 16, xdispatch.ErrInvalidWorkers},
		{"negative workers", -1, 16, xdispatch.ErrInvalidWorkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := xdispatch.New(tt.workers, tt.capacity)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, xdispatch.ErrInvalidConfig)
		})
	}
}

func TestDispatcher_SingleProducerAllStrategies(t *testing.T) {
	const tasks = 5000
	for _, strategy := range xdispatch.WaitStrategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			// 单 worker 时执行顺序即取出顺序
			d, err := xdispatch.New(1, 64, xdispatch.WithWaitStrategy(strategy))
			require.NoError(t, err)
			assert.Equal(t, strategy, d.WaitStrategy())

			order := make([]int, 0, tasks)
			for i := range tasks {
				require.NoError(t, d.Execute(func() { order = append(order, i) }))
			}
			require.NoError(t, d.Close())

			require.Len(t, order, tasks)
			for i, v := range order {
				require.Equal(t, i, v)
			}
		})
	}
}

func TestDispatcher_MultiProducerExactlyOnce(t *testing.T) {
	const (
		producers = 8
		perProd   = 1000
	)
	for _, strategy := range xdispatch.WaitStrategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			d, err := xdispatch.New(4, 16, xdispatch.WithWaitStrategy(strategy))
			require.NoError(t, err)

			counts := make([]atomic.Int32, producers*perProd)
			var wg sync.WaitGroup
			for p := range producers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range perProd {
						id := p*perProd + i
						assert.NoError(t, d.Execute(func() { counts[id].Add(1) }))
					}
				}()
			}
			wg.Wait()
			require.NoError(t, d.Close())

			for id := range counts {
				require.Equal(t, int32(1), counts[id].Load(), "task %d", id)
			}
		})
	}
}

func TestDispatcher_SaturationBlocksNeverDrops(t *testing.T) {
	d, err := xdispatch.New(1, 1, xdispatch.WithWaitStrategy(xdispatch.BlockingWait))
	require.NoError(t, err)
	closeDispatcher(t, d)

	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Execute(func() {
		close(started)
		<-gate
	}))
	<-started

	var ran atomic.Int32
	require.NoError(t, d.Execute(func() { ran.Add(1) }))
	assert.ErrorIs(t, d.TryExecute(func() {}), xdispatch.ErrRingFull)

	submitted := make(chan error, 1)
	go func() {
		submitted <- d.Execute(func() { ran.Add(1) })
	}()

	select {
	case <-submitted:
		t.Fatal("Execute returned while ring was full")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-submitted)
	require.NoError(t, d.Close())
	assert.Equal(t, int32(2), ran.Load())
}

func TestDispatcher_ShutdownDrainsQueue(t *testing.T) {
	d, err := xdispatch.New(2, 128)
	require.NoError(t, err)

	var ran atomic.Int32
	for range 100 {
		require.NoError(t, d.Execute(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(100), ran.Load())

	assert.ErrorIs(t, d.Execute(func() {}), xdispatch.ErrClosed)
	assert.ErrorIs(t, d.TryExecute(func() {}), xdispatch.ErrClosed)
	// 重复关闭
	assert.NoError(t, d.Close())

	select {
	case <-d.Done():
	default:
		t.Fatal("Done not closed after shutdown")
	}
}

func TestDispatcher_ShutdownReleasesBlockedProducer(t *testing.T) {
	d, err := xdispatch.New(1, 1)
	require.NoError(t, err)

	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Execute(func() {
		close(started)
		<-gate
	}))
	<-started
	require.NoError(t, d.Execute(func() {}))

	blocked := make(chan error, 1)
	go func() {
		blocked <- d.Execute(func() {})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, <-blocked, xdispatch.ErrClosed)

	close(gate)
	require.NoError(t, d.Close())
}

func TestDispatcher_PanicRecovered(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	d, err := xdispatch.New(1, 8,
		xdispatch.WithName("panicky"),
		xdispatch.WithMeterProvider(provider))
	require.NoError(t, err)

	var ran atomic.Int32
	require.NoError(t, d.Execute(func() { panic("boom") }))
	require.NoError(t, d.Execute(func() { ran.Add(1) }))
	require.NoError(t, d.Close())
	assert.Equal(t, int32(1), ran.Load())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(2), counterValue(t, rm, "xrpc.dispatcher.tasks.submitted"))
	assert.Equal(t, int64(2), counterValue(t, rm, "xrpc.dispatcher.tasks.executed"))
	assert.Equal(t, int64(1), counterValue(t, rm, "xrpc.dispatcher.tasks.panics"))
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestDispatcher_Accessors(t *testing.T) {
	d, err := xdispatch.New(3, 1000, xdispatch.WithName("io"), xdispatch.WithLogger(nil))
	require.NoError(t, err)
	closeDispatcher(t, d)

	assert.Equal(t, 3, d.Workers())
	assert.Equal(t, 1024, d.Capacity())
	assert.Equal(t, "io", d.Name())
	assert.Equal(t, xdispatch.LiteBlockingWait, d.WaitStrategy())
	assert.GreaterOrEqual(t, d.Len(), 0)
}

func TestDispatcher_InvalidArguments(t *testing.T) {
	d, err := xdispatch.New(1, 1)
	require.NoError(t, err)
	closeDispatcher(t, d)

	assert.ErrorIs(t, d.Execute(nil), xdispatch.ErrNilTask)
	assert.ErrorIs(t, d.TryExecute(nil), xdispatch.ErrNilTask)
	//nolint:staticcheck // 验证 nil context 防御
	assert.ErrorIs(t, d.Shutdown(nil), xdispatch.ErrNilContext)
}

func TestParseWaitStrategy(t *testing.T) {
	tests := []struct {
		name string
		want xdispatch.WaitStrategyType
		ok   bool
	}{
		{"BLOCKING_WAIT", xdispatch.BlockingWait, true},
		{"LITE_BLOCKING_WAIT", xdispatch.LiteBlockingWait, true},
		{"YIELDING_WAIT", xdispatch.YieldingWait, true},
		{"BUSY_SPIN_WAIT", xdispatch.BusySpinWait, true},
		{"blocking_wait", xdispatch.LiteBlockingWait, false},
		{"", xdispatch.LiteBlockingWait, false},
		{"SLEEPING_WAIT", xdispatch.LiteBlockingWait, false},
	}
	for _, tt := range tests {
		got, ok := xdispatch.ParseWaitStrategy(tt.name)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
	}

	assert.Equal(t, "UNKNOWN_WAIT", xdispatch.WaitStrategyType(42).String())
}

func TestWithWaitStrategy_UnknownFallsBack(t *testing.T) {
	d, err := xdispatch.New(1, 1, xdispatch.WithWaitStrategy(xdispatch.WaitStrategyType(42)))
	require.NoError(t, err)
	closeDispatcher(t, d)
	assert.Equal(t, xdispatch.LiteBlockingWait, d.WaitStrategy())
}
