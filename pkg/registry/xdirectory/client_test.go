package xdirectory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
	"github.com/omeyang/xrpc/pkg/resilience/xretry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testRecord = Record{
	Service:    ServiceMeta{Group: "demo", Name: "Echo", Version: "1.0.0"},
	Host:       "10.0.0.1",
	Port:       18090,
	InstanceID: "acc-1",
	Weight:     100,
	Methods:    []string{"Echo"},
}

const testKey = "/xrpc/providers/demo/Echo/1.0.0/10.0.0.1:18090"

func newTestClient(t *testing.T) (*Client, *MocketcdClient, *bytes.Buffer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mock := NewMocketcdClient(ctrl)

	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)

	o := defaultOptions()
	WithLogger(logger)(o)
	WithRevokeTimeout(time.Second)(o)

	cfg := DefaultConfig()
	cfg.Endpoints = []string{"127.0.0.1:2379"}
	return newClient(mock, cfg.withDefaults(), o), mock, &buf
}

// expectKeepAlive 返回的通道在续约 context 取消后关闭，模拟 clientv3 的行为。
func expectKeepAlive(mock *MocketcdClient, id clientv3.LeaseID) {
	mock.EXPECT().KeepAlive(gomock.Any(), id).DoAndReturn(
		func(ctx context.Context, _ clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error) {
			ch := make(chan *clientv3.LeaseKeepAliveResponse, 1)
			ch <- &clientv3.LeaseKeepAliveResponse{ID: id, TTL: 10}
			go func() {
				<-ctx.Done()
				close(ch)
			}()
			return ch, nil
		})
}

func TestPublish_WritesRecordUnderLease(t *testing.T) {
	c, mock, buf := newTestClient(t)
	ctx := context.Background()

	mock.EXPECT().Grant(ctx, int64(defaultLeaseTTL)).Return(&clientv3.LeaseGrantResponse{ID: 7}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(val), &rec))
			assert.Equal(t, testRecord, rec)
			return &clientv3.PutResponse{}, nil
		})
	expectKeepAlive(mock, 7)

	require.NoError(t, c.Publish(ctx, testRecord))
	assert.Equal(t, 1, c.Published())
	assert.Contains(t, buf.String(), "record published")

	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(7)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Zero(t, c.Published())
}

func TestPublish_ReplacesExistingLease(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	gomock.InOrder(
		mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 1}, nil),
		mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil),
	)
	expectKeepAlive(mock, 1)
	require.NoError(t, c.Publish(ctx, testRecord))

	mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 2}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil)
	expectKeepAlive(mock, 2)
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(1)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	require.NoError(t, c.Publish(ctx, testRecord))
	assert.Equal(t, 1, c.Published())

	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(2)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestPublish_PutFailureRevokesLease(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()
	errPut := errors.New("etcdserver: request timed out")

	mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 3}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(nil, errPut)
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(3)).Return(&clientv3.LeaseRevokeResponse{}, nil)

	err := c.Publish(ctx, testRecord)
	assert.ErrorIs(t, err, errPut)
	assert.Zero(t, c.Published())

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestPublish_GrantFailure(t *testing.T) {
	c, mock, _ := newTestClient(t)
	errGrant := errors.New("connection refused")
	mock.EXPECT().Grant(gomock.Any(), gomock.Any()).Return(nil, errGrant)

	assert.ErrorIs(t, c.Publish(context.Background(), testRecord), errGrant)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestPublish_KeepAliveFailureRevokesLease(t *testing.T) {
	c, mock, _ := newTestClient(t)
	errKA := errors.New("lease not found")
	mock.EXPECT().Grant(gomock.Any(), gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 4}, nil)
	mock.EXPECT().Put(gomock.Any(), testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil)
	mock.EXPECT().KeepAlive(gomock.Any(), clientv3.LeaseID(4)).Return(nil, errKA)
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(4)).Return(&clientv3.LeaseRevokeResponse{}, nil)

	assert.ErrorIs(t, c.Publish(context.Background(), testRecord), errKA)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestPublish_InvalidRecord(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	bad := []Record{
		{},
		{Service: ServiceMeta{Group: "g", Name: "n"}, Host: "h", Port: 1},
		{Service: ServiceMeta{Group: "g/x", Name: "n", Version: "v"}, Host: "h", Port: 1},
		{Service: ServiceMeta{Group: "g", Name: "n", Version: "v"}, Port: 1},
		{Service: ServiceMeta{Group: "g", Name: "n", Version: "v"}, Host: "h", Port: 70000},
	}
	for _, rec := range bad {
		assert.ErrorIs(t, c.Publish(ctx, rec), ErrInvalidRecord)
	}
	//nolint:staticcheck // 验证 nil context 防御
	assert.ErrorIs(t, c.Publish(nil, testRecord), ErrNilContext)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Publish(ctx, testRecord), ErrClientClosed)
	assert.ErrorIs(t, c.Unpublish(ctx, testRecord), ErrClientClosed)
	_, err := c.Discover(ctx, testRecord.Service)
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestUnpublish(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Unpublish(ctx, testRecord), ErrNotPublished)

	mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 9}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil)
	expectKeepAlive(mock, 9)
	require.NoError(t, c.Publish(ctx, testRecord))

	mock.EXPECT().Delete(ctx, testKey).Return(&clientv3.DeleteResponse{Deleted: 1}, nil)
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(9)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	require.NoError(t, c.Unpublish(ctx, testRecord))
	assert.Zero(t, c.Published())

	// Close 不再撤销已撤销的租约
	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

// publishWithLosableLease 发布 testRecord，返回的通道关闭即模拟租约丢失。
func publishWithLosableLease(t *testing.T, c *Client, mock *MocketcdClient, id clientv3.LeaseID) chan *clientv3.LeaseKeepAliveResponse {
	t.Helper()
	ctx := context.Background()
	ch := make(chan *clientv3.LeaseKeepAliveResponse)
	mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: id}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil)
	mock.EXPECT().KeepAlive(gomock.Any(), id).Return((<-chan *clientv3.LeaseKeepAliveResponse)(ch), nil)
	require.NoError(t, c.Publish(ctx, testRecord))
	return ch
}

func (c *Client) currentLease(key string) clientv3.LeaseID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published[key].lease
}

func TestLeaseLost_Republishes(t *testing.T) {
	c, mock, buf := newTestClient(t)
	lost := publishWithLosableLease(t, c, mock, 7)

	mock.EXPECT().Grant(gomock.Any(), gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 8}, nil)
	mock.EXPECT().Put(gomock.Any(), testKey, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(val), &rec))
			assert.Equal(t, testRecord, rec)
			return &clientv3.PutResponse{}, nil
		})
	expectKeepAlive(mock, 8)
	close(lost)

	require.Eventually(t, func() bool { return c.currentLease(testKey) == 8 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, c.Published())

	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(8)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())

	assert.Contains(t, buf.String(), "lease lost, republishing record")
	assert.Contains(t, buf.String(), "record republished")
}

func TestLeaseLost_RepublishFailureWithdrawsRecord(t *testing.T) {
	c, mock, buf := newTestClient(t)
	WithRepublishRetryer(xretry.NewRetryer(
		xretry.WithRetryPolicy(xretry.NewFixedRetry(2)),
		xretry.WithBackoffPolicy(xretry.FixedBackoff(time.Millisecond)),
	))(c.opts)
	lost := publishWithLosableLease(t, c, mock, 7)

	errDown := errors.New("etcdserver: no leader")
	mock.EXPECT().Grant(gomock.Any(), gomock.Any()).Return(nil, errDown).Times(2)
	close(lost)

	require.Eventually(t, func() bool { return c.Published() == 0 }, 5*time.Second, 5*time.Millisecond)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
	assert.Contains(t, buf.String(), "lease lost, republishing record")
	assert.Contains(t, buf.String(), "republish failed, record withdrawn")
}

func TestLeaseCanceled_NoRepublish(t *testing.T) {
	c, mock, buf := newTestClient(t)
	ctx := context.Background()
	lost := publishWithLosableLease(t, c, mock, 7)

	mock.EXPECT().Delete(ctx, testKey).Return(&clientv3.DeleteResponse{Deleted: 1}, nil)
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(7)).Return(&clientv3.LeaseRevokeResponse{}, nil)
	require.NoError(t, c.Unpublish(ctx, testRecord))
	close(lost)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
	assert.NotContains(t, buf.String(), "lease lost")
}

func TestDiscover(t *testing.T) {
	c, mock, buf := newTestClient(t)
	ctx := context.Background()

	encoded, err := json.Marshal(testRecord)
	require.NoError(t, err)
	mock.EXPECT().Get(ctx, "/xrpc/providers/demo/Echo/1.0.0/", gomock.Any()).Return(&clientv3.GetResponse{
		Kvs: []*mvccpb.KeyValue{
			{Key: []byte(testKey), Value: encoded},
			{Key: []byte("/xrpc/providers/demo/Echo/1.0.0/broken"), Value: []byte("{")},
		},
	}, nil)

	recs, err := c.Discover(ctx, testRecord.Service)
	require.NoError(t, err)
	assert.Equal(t, []Record{testRecord}, recs)
	assert.Contains(t, buf.String(), "skip malformed record")

	_, err = c.Discover(ctx, ServiceMeta{})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestPing(t *testing.T) {
	c, mock, _ := newTestClient(t)
	errDown := errors.New("context deadline exceeded")

	mock.EXPECT().Get(gomock.Any(), probeKey, gomock.Any()).Return(&clientv3.GetResponse{}, nil)
	require.NoError(t, c.Ping(context.Background()))

	mock.EXPECT().Get(gomock.Any(), probeKey, gomock.Any()).Return(nil, errDown)
	assert.ErrorIs(t, c.Ping(context.Background()), errDown)

	mock.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestClose_JoinsErrors(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	mock.EXPECT().Grant(ctx, gomock.Any()).Return(&clientv3.LeaseGrantResponse{ID: 5}, nil)
	mock.EXPECT().Put(ctx, testKey, gomock.Any(), gomock.Any()).Return(&clientv3.PutResponse{}, nil)
	expectKeepAlive(mock, 5)
	require.NoError(t, c.Publish(ctx, testRecord))

	errRevoke := errors.New("revoke failed")
	errClose := errors.New("close failed")
	mock.EXPECT().Revoke(gomock.Any(), clientv3.LeaseID(5)).Return(nil, errRevoke)
	mock.EXPECT().Close().Return(errClose)

	err := c.Close()
	assert.ErrorIs(t, err, errRevoke)
	assert.ErrorIs(t, err, errClose)
}

func TestRecord_KeyLayout(t *testing.T) {
	assert.Equal(t, "10.0.0.1:18090", testRecord.Addr())
	assert.Equal(t, "demo/Echo/1.0.0", testRecord.Service.String())
	assert.Equal(t, testKey, recordKey("/xrpc/providers", testRecord))

	v6 := testRecord
	v6.Host = "::1"
	assert.Equal(t, "[::1]:18090", v6.Addr())
}
