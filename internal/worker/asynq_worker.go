package worker

import (
	"context"

	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/provider"
	"github.com/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAffiliateOrphanReferral, c.handleOrphanReferral)
}

func (c *Consumer) handleOrphanReferral(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_orphan_referral_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrphanReferralTask(task)
	if err != nil {
		logger.Warnw("worker_orphan_referral_unmarshal_failed", "error", err)
		return err
	}
	orphan := payload.Orphan
	if orphan.OrderID <= 0 {
		logger.Debugw("worker_orphan_referral_skip_invalid_payload", "order_id", orphan.OrderID)
		return nil
	}
	if c.AffiliateService == nil {
		logger.Warnw("worker_orphan_referral_skip_affiliate_service_nil", "order_id", orphan.OrderID)
		return nil
	}
	if err := c.AffiliateService.RecordOrphan(ctx, orphan); err != nil {
		logger.Warnw("worker_orphan_referral_record_failed",
			"order_id", orphan.OrderID,
			"affiliate_id", orphan.AffiliateID,
			"reason", orphan.Reason,
			"error", err,
		)
		return err
	}
	return nil
}
