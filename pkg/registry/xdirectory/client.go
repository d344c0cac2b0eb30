package xdirectory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/omeyang/xrpc/pkg/observability/xlog"
)

const probeKey = "/xrpc/probe"

// publication 是一条已发布记录及其租约。value 保留编码后的记录，租约丢失时用于重新发布。
type publication struct {
	lease  clientv3.LeaseID
	value  string
	cancel context.CancelFunc
}

// Client 目录客户端，并发安全。
type Client struct {
	client etcdClient
	config *Config
	opts   *options

	// ctx 在 Close 时取消，约束后台重新发布。
	ctx  context.Context
	stop context.CancelFunc

	mu        sync.Mutex
	published map[string]publication
	wg        sync.WaitGroup
	closed    atomic.Bool
}

// NewClient 创建目录客户端。etcd 连接是惰性的，首次请求时才真正拨号。
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cfg := config.withDefaults()

	raw, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
		TLS:         o.tlsConfig,
		DialOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                cfg.DialKeepAliveTime,
				Timeout:             cfg.DialKeepAliveTimeout,
				PermitWithoutStream: cfg.PermitWithoutStream,
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("xdirectory: create client: %w", err)
	}
	return newClient(raw, cfg, o), nil
}

func newClient(c etcdClient, cfg *Config, o *options) *Client {
	ctx, stop := context.WithCancel(context.Background())
	return &Client{
		client:    c,
		config:    cfg,
		opts:      o,
		ctx:       ctx,
		stop:      stop,
		published: make(map[string]publication),
	}
}

// Connect 以默认配置连接 addr 上的目录服务器，并在 ctx 约束下做一次读探测。
// 探测失败时关闭客户端并返回错误。
func Connect(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Endpoints = []string{addr}
	return ConnectConfig(ctx, cfg, opts...)
}

// ConnectConfig 同 Connect，使用给定配置。
func ConnectConfig(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	return c, nil
}

// Ping 对目录服务器做一次轻量读请求。
func (c *Client) Ping(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	if _, err := c.client.Get(ctx, probeKey, clientv3.WithCountOnly()); err != nil {
		return fmt.Errorf("xdirectory: probe %v: %w", c.config.Endpoints, err)
	}
	return nil
}

func (c *Client) check(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if c.closed.Load() {
		return ErrClientClosed
	}
	return nil
}

// Publish 发布记录：申请租约、写入记录并在后台续约。
// 重复发布同一地址会用新记录与新租约替换旧的。
// 租约丢失（如 etcd 重启或续约超时）时在客户端关闭前自动重新发布。
func (c *Client) Publish(ctx context.Context, rec Record) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("xdirectory: encode record: %w", err)
	}
	key := recordKey(c.config.Prefix, rec)

	pub, ch, err := c.lease(ctx, key, string(value))
	if err != nil {
		return err
	}

	c.mu.Lock()
	old, replaced := c.published[key]
	c.published[key] = pub
	c.wg.Add(1)
	c.mu.Unlock()
	go c.drain(key, pub.lease, ch)

	if replaced {
		old.cancel()
		if err := c.revoke(old.lease); err != nil {
			c.opts.logger.Warn(ctx, "revoke replaced lease failed", slog.String("key", key), xlog.Err(err))
		}
	}
	c.opts.logger.Info(ctx, "record published", slog.String("key", key), slog.Int64("lease", int64(pub.lease)))
	return nil
}

// lease 申请租约、在租约下写入 value 并开始续约。
func (c *Client) lease(ctx context.Context, key, value string) (publication, <-chan *clientv3.LeaseKeepAliveResponse, error) {
	grant, err := c.client.Grant(ctx, c.config.LeaseTTL)
	if err != nil {
		return publication{}, nil, fmt.Errorf("xdirectory: grant lease for %s: %w", key, err)
	}
	if _, err := c.client.Put(ctx, key, value, clientv3.WithLease(grant.ID)); err != nil {
		return publication{}, nil, errors.Join(
			fmt.Errorf("xdirectory: put %s: %w", key, err),
			c.revoke(grant.ID),
		)
	}

	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := c.client.KeepAlive(kaCtx, grant.ID)
	if err != nil {
		cancel()
		return publication{}, nil, errors.Join(
			fmt.Errorf("xdirectory: keepalive %s: %w", key, err),
			c.revoke(grant.ID),
		)
	}
	return publication{lease: grant.ID, value: value, cancel: cancel}, ch, nil
}

// drain 消费续约响应直到通道关闭。
// 通道关闭时若该租约仍是 key 的当前租约，说明租约丢失而不是被主动撤销或替换。
func (c *Client) drain(key string, id clientv3.LeaseID, ch <-chan *clientv3.LeaseKeepAliveResponse) {
	defer c.wg.Done()
	for range ch {
	}
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	pub, ok := c.published[key]
	c.mu.Unlock()
	if !ok || pub.lease != id {
		return
	}
	c.opts.logger.Warn(c.ctx, "lease lost, republishing record",
		slog.String("key", key), slog.Int64("lease", int64(id)))
	c.republish(key, pub)
}

// republish 按重试策略为 key 申请新租约。失败时撤下该记录。
func (c *Client) republish(key string, lost publication) {
	lost.cancel()

	var (
		next publication
		ch   <-chan *clientv3.LeaseKeepAliveResponse
	)
	err := c.opts.retryer.Do(c.ctx, func(ctx context.Context) error {
		var err error
		next, ch, err = c.lease(ctx, key, lost.value)
		return err
	})

	c.mu.Lock()
	cur, ok := c.published[key]
	current := ok && cur.lease == lost.lease && !c.closed.Load()
	switch {
	case err != nil:
		if current {
			delete(c.published, key)
		}
		c.mu.Unlock()
		if current {
			c.opts.logger.Error(c.ctx, "republish failed, record withdrawn",
				slog.String("key", key), xlog.Err(err))
		}
		return
	case !current:
		// 重新发布期间记录被撤销、替换或客户端已关闭。
		c.mu.Unlock()
		next.cancel()
		_ = c.revoke(next.lease)
		return
	}
	c.published[key] = next
	c.wg.Add(1)
	c.mu.Unlock()
	go c.drain(key, next.lease, ch)

	c.opts.logger.Info(c.ctx, "record republished",
		slog.String("key", key), slog.Int64("lease", int64(next.lease)))
}

func (c *Client) revoke(id clientv3.LeaseID) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.revokeTimeout)
	defer cancel()
	if _, err := c.client.Revoke(ctx, id); err != nil {
		return fmt.Errorf("xdirectory: revoke lease %d: %w", id, err)
	}
	return nil
}

// Unpublish 删除记录并撤销其租约。
func (c *Client) Unpublish(ctx context.Context, rec Record) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	key := recordKey(c.config.Prefix, rec)

	c.mu.Lock()
	pub, ok := c.published[key]
	delete(c.published, key)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPublished, key)
	}

	pub.cancel()
	var errs []error
	if _, err := c.client.Delete(ctx, key); err != nil {
		errs = append(errs, fmt.Errorf("xdirectory: delete %s: %w", key, err))
	}
	if err := c.revoke(pub.lease); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		c.opts.logger.Info(ctx, "record unpublished", slog.String("key", key))
	}
	return errors.Join(errs...)
}

// Discover 列出某个服务的全部提供者记录，无法解码的记录被跳过。
func (c *Client) Discover(ctx context.Context, meta ServiceMeta) ([]Record, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	prefix := servicePrefix(c.config.Prefix, meta)
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("xdirectory: list %s: %w", prefix, err)
	}
	records := make([]Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var rec Record
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			c.opts.logger.Warn(ctx, "skip malformed record", slog.String("key", string(kv.Key)), xlog.Err(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Published 返回本客户端当前发布的记录数。
func (c *Client) Published() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

// Close 停止续约、尽力撤销全部租约并关闭连接。重复调用返回 nil。
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.stop()
	c.mu.Lock()
	pubs := c.published
	c.published = make(map[string]publication)
	c.mu.Unlock()

	var errs []error
	for _, pub := range pubs {
		pub.cancel()
		if err := c.revoke(pub.lease); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("xdirectory: close: %w", err))
	}
	c.wg.Wait()
	return errors.Join(errs...)
}
