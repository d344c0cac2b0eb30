package xexecutor_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xrpc/pkg/config/xconf"
	"github.com/omeyang/xrpc/pkg/executor/xdispatch"
	"github.com/omeyang/xrpc/pkg/executor/xexecutor"
	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBufferLogger(t *testing.T) (xlog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	return logger, &buf
}

func TestNewExecutor_WorkerCountCappedByMaxWorkers(t *testing.T) {
	f := xexecutor.NewDispatcherFactory(xexecutor.WithSettings(xexecutor.Settings{
		QueueCapacity: 100,
		MaxWorkers:    4,
	}))

	exec, err := f.NewExecutor(16)
	require.NoError(t, err)
	defer func() { assert.NoError(t, exec.Close()) }()

	d := xexecutor.Dispatcher(exec)
	require.NotNil(t, d)
	assert.Equal(t, 4, d.Workers())
	assert.Equal(t, 128, d.Capacity())
	assert.Equal(t, xdispatch.LiteBlockingWait, d.WaitStrategy())

	small, err := f.NewExecutor(2)
	require.NoError(t, err)
	defer func() { assert.NoError(t, small.Close()) }()
	assert.Equal(t, 2, xexecutor.Dispatcher(small).Workers())
}

func TestNewExecutor_InvalidParallelism(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := xexecutor.NewDispatcherFactory()
	for _, p := range []int{0, -3} {
		exec, err := f.NewExecutor(p)
		assert.Nil(t, exec)
		assert.ErrorIs(t, err, xexecutor.ErrInvalidParallelism)
		assert.ErrorIs(t, err, xdispatch.ErrInvalidConfig)
	}
}

func TestNewExecutor_InvalidSettings(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := xexecutor.NewDispatcherFactory(xexecutor.WithSettings(xexecutor.Settings{MaxWorkers: 1}))
	_, err := f.NewExecutor(1)
	assert.ErrorIs(t, err, xdispatch.ErrInvalidConfig)
	assert.ErrorIs(t, xexecutor.SetSettings(xexecutor.Settings{QueueCapacity: 1}), xexecutor.ErrInvalidSettings)
}

func TestNewExecutor_ExecutesAllTasks(t *testing.T) {
	exec, err := xexecutor.NewDispatcherFactory(xexecutor.WithName("test")).NewExecutor(4)
	require.NoError(t, err)

	var ran atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1000)
	for range 1000 {
		require.NoError(t, exec.Execute(func() {
			ran.Add(1)
			wg.Done()
		}))
	}
	wg.Wait()
	require.NoError(t, exec.Shutdown(context.Background()))
	assert.Equal(t, int32(1000), ran.Load())
	assert.ErrorIs(t, exec.Execute(nil), xdispatch.ErrNilTask)
}

func TestWaitStrategy_Selection(t *testing.T) {
	tests := []struct {
		name     string
		setting  string
		want     xdispatch.WaitStrategyType
		warnings bool
	}{
		{"unset", "", xdispatch.LiteBlockingWait, false},
		{"blocking", "BLOCKING_WAIT", xdispatch.BlockingWait, false},
		{"yielding", "YIELDING_WAIT", xdispatch.YieldingWait, false},
		{"busy spin", "BUSY_SPIN_WAIT", xdispatch.BusySpinWait, false},
		{"case sensitive", "blocking_wait", xdispatch.LiteBlockingWait, true},
		{"unknown", "SLEEPING_WAIT", xdispatch.LiteBlockingWait, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(t)
			f := xexecutor.NewDispatcherFactory(
				xexecutor.WithLogger(logger),
				xexecutor.WithSettings(xexecutor.Settings{
					QueueCapacity: 8,
					MaxWorkers:    1,
					WaitStrategy:  tt.setting,
				}))

			exec, err := f.NewExecutor(1)
			require.NoError(t, err)
			defer func() { assert.NoError(t, exec.Close()) }()

			assert.Equal(t, tt.want, xexecutor.Dispatcher(exec).WaitStrategy())
			if tt.warnings {
				assert.Contains(t, buf.String(), "unknown wait strategy")
				assert.Contains(t, buf.String(), tt.setting)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestProcessSettings(t *testing.T) {
	t.Cleanup(xexecutor.ResetSettings)

	assert.Equal(t, xexecutor.DefaultSettings(), xexecutor.CurrentSettings())
	require.NoError(t, xexecutor.SetSettings(xexecutor.Settings{
		QueueCapacity: 16,
		MaxWorkers:    2,
		WaitStrategy:  "YIELDING_WAIT",
	}))

	exec, err := xexecutor.NewDispatcherFactory().NewExecutor(8)
	require.NoError(t, err)
	defer func() { assert.NoError(t, exec.Close()) }()

	d := xexecutor.Dispatcher(exec)
	assert.Equal(t, 2, d.Workers())
	assert.Equal(t, 16, d.Capacity())
	assert.Equal(t, xdispatch.YieldingWait, d.WaitStrategy())
}

func TestLoadSettings(t *testing.T) {
	s, err := xexecutor.LoadSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, xexecutor.DefaultSettings(), s)

	cfg, err := xconf.NewFromBytes([]byte("executor:\n  max_workers: 64\n  wait_strategy: BUSY_SPIN_WAIT\n"), xconf.FormatYAML)
	require.NoError(t, err)
	s, err = xexecutor.LoadSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, xexecutor.Settings{
		QueueCapacity: xexecutor.DefaultQueueCapacity,
		MaxWorkers:    64,
		WaitStrategy:  "BUSY_SPIN_WAIT",
	}, s)

	bad, err := xconf.NewFromBytes([]byte("executor:\n  queue_capacity: -1\n"), xconf.FormatYAML)
	require.NoError(t, err)
	_, err = xexecutor.LoadSettings(bad)
	assert.ErrorIs(t, err, xexecutor.ErrInvalidSettings)
}

func TestWatchSettings(t *testing.T) {
	t.Cleanup(xexecutor.ResetSettings)

	path := filepath.Join(t.TempDir(), "xrpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("executor:\n  max_workers: 8\n"), 0o600))
	cfg, err := xconf.New(path)
	require.NoError(t, err)
	require.NoError(t, xexecutor.ApplyConfig(cfg))
	assert.Equal(t, 8, xexecutor.CurrentSettings().MaxWorkers)

	logger, _ := newBufferLogger(t)
	w, err := xexecutor.WatchSettings(cfg, logger)
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("executor:\n  max_workers: 32\n"), 0o600))
	assert.Eventually(t, func() bool {
		return xexecutor.CurrentSettings().MaxWorkers == 32
	}, 2*time.Second, 10*time.Millisecond)
}
