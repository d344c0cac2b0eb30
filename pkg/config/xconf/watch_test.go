package xconf

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "xrpc.yaml", "executor:\n  max_workers: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)

	var calls atomic.Int32
	w, err := Watch(cfg, func(c Config, err error) {
		if err == nil && c.Client().Int("executor.max_workers") == 2 {
			calls.Add(1)
		}
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	w.Start()
	t.Cleanup(func() { assert.NoError(t, w.Stop()) })

	require.NoError(t, os.WriteFile(path, []byte("executor:\n  max_workers: 2\n"), 0o600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, cfg.Client().Int("executor.max_workers"))
}

func TestWatch_StopIsIdempotent(t *testing.T) {
	path := writeFile(t, "xrpc.yaml", "a: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)

	w, err := Watch(cfg, nil)
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	// 停止后再次启动无效果
	w.Start()
}

func TestWatch_RejectsNonFileConfig(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	_, err = Watch(cfg, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}
