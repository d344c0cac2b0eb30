package xrun

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGroup_Empty(t *testing.T) {
	g, _ := NewGroup(context.Background())
	assert.NoError(t, g.Wait())
}

func TestGroup_ServiceErrorCancelsOthers(t *testing.T) {
	errBoom := errors.New("boom")
	var canceled atomic.Bool

	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		canceled.Store(true)
		return ctx.Err()
	})
	g.GoWithName("failing", func(context.Context) error { return errBoom })

	assert.ErrorIs(t, g.Wait(), errBoom)
	assert.True(t, canceled.Load())
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(nil) //nolint:staticcheck // nil 归一化为 Background
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_CancelCause(t *testing.T) {
	custom := errors.New("shutdown requested")
	g, ctx := NewGroup(context.Background())
	g.Go(WaitForDone())
	g.Cancel(custom)

	assert.ErrorIs(t, g.Wait(), custom)
	assert.Error(t, ctx.Err())
}

func TestGroup_CancelNilFiltersCanceled(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(WaitForDone())
	g.Cancel(nil)
	assert.NoError(t, g.Wait())
}

func TestGroup_ParentCancelFiltersCanceled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(parent)
	g.GoWithName("waiter", WaitForDone())
	cancel()
	assert.NoError(t, g.Wait())
}

func TestGroup_ServiceOwnCanceledIsKept(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestRun_SignalError(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	ctx := withTestSigChan(context.Background(), sigCh)

	done := make(chan error, 1)
	go func() { done <- Run(ctx, WaitForDone()) }()
	sigCh <- syscall.SIGTERM

	select {
	case err := <-done:
		var sigErr *SignalError
		require.ErrorAs(t, err, &sigErr)
		assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
		assert.ErrorIs(t, err, ErrSignal)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after signal")
	}
}

func TestRunWithOptions_WithoutSignalHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunWithOptions(ctx, []Option{WithoutSignalHandler(), WithName("test")}, WaitForDone())
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunWithOptions did not return after cancel")
	}
}

func TestRunServices(t *testing.T) {
	var ran atomic.Int32
	svc := ServiceFunc(func(context.Context) error {
		ran.Add(1)
		return nil
	})
	err := RunServicesWithOptions(context.Background(), []Option{WithoutSignalHandler()}, svc, svc)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), ran.Load())

	err = RunServicesWithOptions(context.Background(), []Option{WithoutSignalHandler()}, nil)
	assert.ErrorIs(t, err, ErrNilService)
}

func TestShutdownOnDone(t *testing.T) {
	var stopped atomic.Bool
	stop := func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		assert.NoError(t, ctx.Err())
		stopped.Store(true)
		return nil
	}

	g, _ := NewGroup(context.Background())
	g.Go(ShutdownOnDone(stop, time.Second))
	g.Cancel(nil)
	require.NoError(t, g.Wait())
	assert.True(t, stopped.Load())

	assert.ErrorIs(t, ShutdownOnDone(nil, 0)(context.Background()), ErrNilFunc)
}

func TestSignalError(t *testing.T) {
	err := &SignalError{Signal: syscall.SIGINT}
	assert.Equal(t, "received signal interrupt", err.Error())
	assert.ErrorIs(t, err, ErrSignal)
	assert.Equal(t, "received signal <nil>", (&SignalError{}).Error())
}

func TestWithSignals_Copies(t *testing.T) {
	signals := []os.Signal{syscall.SIGINT}
	opt := WithSignals(signals)
	signals[0] = syscall.SIGTERM

	o := applyOptions([]Option{opt, nil})
	assert.Equal(t, []os.Signal{syscall.SIGINT}, o.signals)
	assert.Len(t, DefaultSignals(), 4)
}
