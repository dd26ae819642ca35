package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/service"
)

const defaultPayoutCheckInterval = time.Hour

// PayoutScheduler 周期检查并执行按周/按月结算
type PayoutScheduler struct {
	name       string
	affiliates *service.AffiliateService
	interval   time.Duration
	now        func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewPayoutScheduler 创建结算调度；intervalSeconds <= 0 时每小时检查一次
func NewPayoutScheduler(affiliates *service.AffiliateService, intervalSeconds int) *PayoutScheduler {
	interval := defaultPayoutCheckInterval
	if intervalSeconds > 0 {
		interval = time.Duration(intervalSeconds) * time.Second
	}
	return &PayoutScheduler{
		name:       "payout-scheduler",
		affiliates: affiliates,
		interval:   interval,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

// Name 服务名称
func (s *PayoutScheduler) Name() string {
	if s == nil || s.name == "" {
		return "payout-scheduler"
	}
	return s.name
}

// Start 立即检查一次，之后按间隔循环，直到 ctx 取消或 Stop
func (s *PayoutScheduler) Start(ctx context.Context) error {
	if s == nil || s.affiliates == nil {
		return errors.New("payout scheduler not initialized")
	}
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop 停止调度
func (s *PayoutScheduler) Stop(context.Context) error {
	if s == nil {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// RunOnce 执行一轮到期结算
func (s *PayoutScheduler) RunOnce(ctx context.Context) []int64 {
	payouts, err := s.affiliates.RunScheduledPayouts(ctx, s.now().UTC())
	if err != nil {
		logger.Warnw("worker_scheduled_payout_failed", "error", err)
		return nil
	}
	ids := make([]int64, 0, len(payouts))
	for _, p := range payouts {
		ids = append(ids, p.ID)
	}
	if len(ids) > 0 {
		logger.Infow("worker_scheduled_payout_done", "count", len(ids), "payout_ids", ids)
	}
	return ids
}
