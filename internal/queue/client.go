package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultConcurrency = 10
	orphanMaxRetry     = 5
	orphanTaskTimeout  = 30 * time.Second
	// 同一订单的无归属记录在此期间只入队一次
	orphanUniqueWindow = 24 * time.Hour
)

// Client 订单流程使用的任务投递端；未启用时所有投递为空操作
type Client struct {
	client *asynq.Client
	now    func() time.Time
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{now: time.Now}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.client = asynq.NewClient(redisOpt(cfg))
	return c, nil
}

// Enabled 是否连接了 Redis 队列
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrphanReferral 投递无归属推荐；以订单号去重，重复投递视为成功
func (c *Client) EnqueueOrphanReferral(ctx context.Context, orphan models.OrphanReferral, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	if orphan.Date.IsZero() {
		orphan.Date = c.now().UTC()
	}
	task, err := NewOrphanReferralTask(OrphanReferralPayload{Orphan: orphan})
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(DefaultQueue),
		asynq.MaxRetry(orphanMaxRetry),
		asynq.Timeout(orphanTaskTimeout),
		asynq.TaskID(orphanTaskID(orphan.OrderID)),
		asynq.Retention(orphanUniqueWindow),
	}
	_, err = c.client.EnqueueContext(ctx, task, append(options, opts...)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// RecordOrphan 实现订单服务的无归属记录接口
func (c *Client) RecordOrphan(ctx context.Context, orphan models.OrphanReferral) error {
	return c.EnqueueOrphanReferral(ctx, orphan)
}

// BuildServerConfig 消费端的连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func orphanTaskID(orderID int) string {
	return "orphan-order-" + strconv.Itoa(orderID)
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		cfg = &config.QueueConfig{}
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
