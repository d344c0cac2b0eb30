package xdirectory

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// etcdClient 是 xdirectory 用到的 etcd 操作子集，*clientv3.Client 实现了它。
//
//go:generate mockgen -source=etcd_interface.go -destination=mock_etcd_test.go -package=xdirectory
type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	KeepAlive(ctx context.Context, id clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error)
	Close() error
}

var _ etcdClient = (*clientv3.Client)(nil)
