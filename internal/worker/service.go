package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

const serviceName = "orphan-worker"

var (
	// ErrQueueDisabled 队列未启用
	ErrQueueDisabled = errors.New("queue disabled")
	// ErrConsumerMissing 未提供消费者
	ErrConsumerMissing = errors.New("consumer is nil")
)

// Service 消费无归属推荐任务的后台服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建队列消费服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if consumer == nil {
		return nil, ErrConsumerMissing
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(logTaskFailure)
	serverCfg.Logger = logger.S()

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return serviceName
}

// Start 启动消费并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return fmt.Errorf("%s not initialized", serviceName)
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start %s: %w", serviceName, err)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后退出
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	logger.Warnw("worker_task_failed",
		"task_type", task.Type(),
		"retried", retried,
		"error", err,
	)
}
