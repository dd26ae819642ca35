package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/metrics"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	PayoutTriggerManual    = "manual"
	PayoutTriggerScheduled = "scheduled"

	weeklyPayoutInterval  = 7 * 24 * time.Hour
	monthlyPayoutInterval = 30 * 24 * time.Hour
)

// AffiliateStats 推广员统计
type AffiliateStats struct {
	TotalCommissions   models.Money `json:"totalCommissions"`
	TotalSales         int          `json:"totalSales"`
	PendingCommissions models.Money `json:"pendingCommissions"`
	ConversionRate     float64      `json:"conversionRate"`
}

// AdminAffiliateStats 后台推广汇总
type AdminAffiliateStats struct {
	TotalAffiliates      int          `json:"totalAffiliates"`
	TotalCommissionsPaid models.Money `json:"totalCommissionsPaid"`
	PendingPayouts       models.Money `json:"pendingPayouts"`
	TotalSalesGenerated  int          `json:"totalSalesGenerated"`
}

// AffiliateService 推广账本服务，同一推广员的变更串行执行
type AffiliateService struct {
	repo        repository.AffiliateRepository
	settings    *AffiliateSettingService
	metrics     *metrics.Metrics
	linkBaseURL string

	locks keyedMutex
	now   func() time.Time

	payoutMu     sync.Mutex
	lastPayoutID int64
}

// NewAffiliateService 创建推广账本服务
func NewAffiliateService(repo repository.AffiliateRepository, settings *AffiliateSettingService, m *metrics.Metrics, linkBaseURL string) *AffiliateService {
	return &AffiliateService{
		repo:        repo,
		settings:    settings,
		metrics:     m,
		linkBaseURL: strings.TrimRight(strings.TrimSpace(linkBaseURL), "/"),
		now:         time.Now,
	}
}

// CreatePending 创建待审核账本；rate 为 0 时使用全局默认比例
func (s *AffiliateService) CreatePending(ctx context.Context, userID int, email string, rate float64, application *models.AffiliateApplication) (*models.Affiliate, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	if rate == 0 {
		rate = s.defaultRate(ctx)
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAffiliateExists
	}

	now := s.now().UTC()
	affiliate := &models.Affiliate{
		ID:               userID,
		UserID:           userID,
		Email:            email,
		Status:           constants.AffiliateStatusPending,
		CommissionRate:   rate,
		TotalCommissions: models.Money{},
		PendingPayout:    models.Money{},
		Commissions:      []models.AffiliateCommission{},
		Referrals:        []models.AffiliateReferral{},
		Payouts:          []models.AffiliatePayout{},
		JoinedDate:       now,
		Application:      application,
	}
	if err := s.repo.Save(ctx, affiliate); err != nil {
		return nil, err
	}
	logger.Infow("affiliate_ledger_created", "affiliate_id", userID, "rate", rate)
	return affiliate, nil
}

// Get 读取账本，不存在返回 ErrAffiliateNotFound
func (s *AffiliateService) Get(ctx context.Context, id int) (*models.Affiliate, error) {
	affiliate, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrAffiliateNotFound
	}
	return affiliate, nil
}

// List 列出全部账本
func (s *AffiliateService) List(ctx context.Context) ([]models.Affiliate, error) {
	return s.repo.List(ctx)
}

// Approve 设为 active，可重复调用
func (s *AffiliateService) Approve(ctx context.Context, id int) (*models.Affiliate, error) {
	return s.setStatus(ctx, id, constants.AffiliateStatusActive)
}

// Suspend 设为 suspended，可重复调用
func (s *AffiliateService) Suspend(ctx context.Context, id int) (*models.Affiliate, error) {
	return s.setStatus(ctx, id, constants.AffiliateStatusSuspended)
}

func (s *AffiliateService) setStatus(ctx context.Context, id int, status string) (*models.Affiliate, error) {
	return s.mutate(ctx, "set_status", id, func(a *models.Affiliate) error {
		a.Status = status
		if a.Application != nil && a.Application.Status == constants.AffiliateStatusPending {
			a.Application.Status = status
		}
		return nil
	})
}

// SetCommissionRate 修改个人佣金比例，要求 0 < rate ≤ 1
func (s *AffiliateService) SetCommissionRate(ctx context.Context, id int, rate float64) (*models.Affiliate, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "set_rate", id, func(a *models.Affiliate) error {
		a.CommissionRate = rate
		return nil
	})
}

// RecordReferral 追加推荐记录
func (s *AffiliateService) RecordReferral(ctx context.Context, id, orderID int, amount models.Money) (*models.Affiliate, error) {
	return s.mutate(ctx, "referral", id, func(a *models.Affiliate) error {
		a.Referrals = append(a.Referrals, models.AffiliateReferral{
			OrderID: orderID,
			Date:    s.now().UTC(),
			Amount:  amount,
		})
		return nil
	})
}

// RecordCommission 追加待结算佣金并增加 pendingPayout
func (s *AffiliateService) RecordCommission(ctx context.Context, id, orderID int, amount models.Money) (*models.Affiliate, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidInput
	}
	affiliate, err := s.mutate(ctx, "commission", id, func(a *models.Affiliate) error {
		appendCommission(a, orderID, amount, s.now().UTC())
		return nil
	})
	if err == nil {
		s.metrics.RecordCommission(amount.InexactFloat64())
	}
	return affiliate, err
}

// Accrue 在一次加锁变更中记录推荐与佣金，佣金 = subtotal × 比例
func (s *AffiliateService) Accrue(ctx context.Context, id, orderID int, subtotal models.Money) (models.Money, error) {
	var commission models.Money
	_, err := s.mutate(ctx, "accrue", id, func(a *models.Affiliate) error {
		if a.Status == constants.AffiliateStatusSuspended {
			return ErrAffiliateSuspended
		}
		rate := a.CommissionRate
		if rate <= 0 {
			rate = defaultCommissionRate
		}
		now := s.now().UTC()
		commission = subtotal.Times(decimal.NewFromFloat(rate))
		a.Referrals = append(a.Referrals, models.AffiliateReferral{
			OrderID: orderID,
			Date:    now,
			Amount:  subtotal,
		})
		appendCommission(a, orderID, commission, now)
		return nil
	})
	if err != nil {
		return models.Money{}, err
	}
	s.metrics.RecordCommission(commission.InexactFloat64())
	return commission, nil
}

func appendCommission(a *models.Affiliate, orderID int, amount models.Money, now time.Time) {
	a.Commissions = append(a.Commissions, models.AffiliateCommission{
		OrderID: orderID,
		Amount:  amount,
		Date:    now,
		Status:  constants.CommissionStatusPending,
	})
	a.PendingPayout = a.PendingPayout.Plus(amount)
}

// ProcessPayout 结算全部待结算佣金；账本保存成功后再写结算文件
func (s *AffiliateService) ProcessPayout(ctx context.Context, id int, trigger string) (*models.AffiliatePayout, error) {
	var payout models.AffiliatePayout
	_, err := s.mutate(ctx, "payout", id, func(a *models.Affiliate) error {
		now := s.now().UTC()
		payout = models.AffiliatePayout{
			ID:          s.nextPayoutID(now),
			AffiliateID: a.ID,
			Amount:      a.PendingPayout,
			Date:        now,
			Status:      constants.PayoutStatusPaid,
		}
		a.Payouts = append(a.Payouts, payout)
		a.TotalCommissions = a.TotalCommissions.Plus(a.PendingPayout)
		a.PendingPayout = models.Money{}
		for i := range a.Commissions {
			if a.Commissions[i].Status == constants.CommissionStatusPending {
				a.Commissions[i].Status = constants.CommissionStatusPaid
			}
		}
		a.LastPayoutDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	// 账本已落盘为准；结算文件写失败只记录日志，避免重试重复结算
	if err := s.repo.SavePayout(ctx, &payout); err != nil {
		logger.Errorw("affiliate_payout_file_write_failed",
			"affiliate_id", id,
			"payout_id", payout.ID,
			"error", err,
		)
	}
	s.metrics.RecordPayout(trigger, payout.Amount.InexactFloat64())
	logger.Infow("affiliate_payout_processed",
		"affiliate_id", id,
		"payout_id", payout.ID,
		"amount", payout.Amount.String(),
		"trigger", trigger,
	)
	return &payout, nil
}

// nextPayoutID 毫秒时间戳，保证严格递增
func (s *AffiliateService) nextPayoutID(now time.Time) int64 {
	s.payoutMu.Lock()
	defer s.payoutMu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastPayoutID {
		id = s.lastPayoutID + 1
	}
	s.lastPayoutID = id
	return id
}

// RunScheduledPayouts 按结算周期为达到最低金额的活跃推广员自动结算
func (s *AffiliateService) RunScheduledPayouts(ctx context.Context, now time.Time) ([]models.AffiliatePayout, error) {
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	var interval time.Duration
	switch setting.PayoutSchedule {
	case constants.PayoutScheduleWeekly:
		interval = weeklyPayoutInterval
	case constants.PayoutScheduleMonthly:
		interval = monthlyPayoutInterval
	default:
		return nil, nil
	}

	affiliates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var payouts []models.AffiliatePayout
	for _, a := range affiliates {
		if a.Status != constants.AffiliateStatusActive || !a.PendingPayout.IsPositive() {
			continue
		}
		if a.PendingPayout.LessThan(setting.MinimumPayout.Decimal) {
			continue
		}
		since := a.JoinedDate
		if a.LastPayoutDate != nil {
			since = *a.LastPayoutDate
		}
		if now.Sub(since) < interval {
			continue
		}
		payout, err := s.ProcessPayout(ctx, a.ID, PayoutTriggerScheduled)
		if err != nil {
			logger.Errorw("affiliate_scheduled_payout_failed", "affiliate_id", a.ID, "error", err)
			continue
		}
		payouts = append(payouts, *payout)
	}
	return payouts, nil
}

// Stats 推广员个人统计
func (s *AffiliateService) Stats(ctx context.Context, id int) (*AffiliateStats, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := &AffiliateStats{
		TotalCommissions:   a.TotalCommissions,
		TotalSales:         len(a.Referrals),
		PendingCommissions: a.PendingPayout,
	}
	if len(a.Referrals) > 0 {
		rate := math.Min(100, float64(len(a.Commissions))/float64(len(a.Referrals))*100)
		stats.ConversionRate = math.Round(rate*10) / 10
	}
	return stats, nil
}

// AdminStats 全部推广员汇总
func (s *AffiliateService) AdminStats(ctx context.Context) (*AdminAffiliateStats, error) {
	affiliates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &AdminAffiliateStats{TotalAffiliates: len(affiliates)}
	for _, a := range affiliates {
		stats.TotalCommissionsPaid = stats.TotalCommissionsPaid.Plus(a.TotalCommissions)
		stats.PendingPayouts = stats.PendingPayouts.Plus(a.PendingPayout)
		stats.TotalSalesGenerated += len(a.Referrals)
	}
	return stats, nil
}

// CommissionData 推广员视角的佣金设置
func (s *AffiliateService) CommissionData(ctx context.Context, id int) (*models.CommissionData, error) {
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	data := &models.CommissionData{
		Rate:           setting.DefaultRate,
		MinimumPayout:  setting.MinimumPayout,
		PayoutSchedule: setting.PayoutSchedule,
		CookieDuration: setting.CookieDuration,
		Terms:          setting.Terms,
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a != nil && a.CommissionRate > 0 {
		data.Rate = a.CommissionRate
	}
	return data, nil
}

// Link 生成推广链接
func (s *AffiliateService) Link(affiliateID int, productID string) string {
	return fmt.Sprintf("%s/product/%s?aff=%d", s.linkBaseURL, productID, affiliateID)
}

// ListPayouts 列出全部结算记录
func (s *AffiliateService) ListPayouts(ctx context.Context) ([]models.AffiliatePayout, error) {
	return s.repo.ListPayouts(ctx)
}

// ListOrphans 列出全部无归属推荐
func (s *AffiliateService) ListOrphans(ctx context.Context) ([]models.OrphanReferral, error) {
	return s.repo.ListOrphans(ctx)
}

// RecordOrphan 持久化无归属推荐
func (s *AffiliateService) RecordOrphan(ctx context.Context, orphan models.OrphanReferral) error {
	if orphan.Date.IsZero() {
		orphan.Date = s.now().UTC()
	}
	if err := s.repo.SaveOrphan(ctx, &orphan); err != nil {
		return err
	}
	logger.Infow("affiliate_orphan_recorded",
		"order_id", orphan.OrderID,
		"affiliate_id", orphan.AffiliateID,
		"reason", orphan.Reason,
	)
	return nil
}

// mutate 加锁执行 读取 → 修改 → 保存
func (s *AffiliateService) mutate(ctx context.Context, op string, id int, fn func(a *models.Affiliate) error) (*models.Affiliate, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	start := time.Now()
	affiliate, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrAffiliateNotFound
	}
	if err := fn(affiliate); err != nil {
		return nil, err
	}
	if affiliate.PendingPayout.IsNegative() {
		return nil, fmt.Errorf("affiliate %d pending payout would become negative", id)
	}
	if err := s.repo.Save(ctx, affiliate); err != nil {
		return nil, err
	}
	s.metrics.ObserveLedgerMutation(op, time.Since(start))
	return affiliate, nil
}

func (s *AffiliateService) defaultRate(ctx context.Context) float64 {
	if s.settings == nil {
		return defaultCommissionRate
	}
	setting, err := s.settings.Get(ctx)
	if err != nil {
		logger.Warnw("affiliate_settings_load_failed", "error", err)
		return defaultCommissionRate
	}
	return setting.DefaultRate
}

// keyedMutex 按推广员 id 分配互斥锁
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// Lock 加锁并返回解锁函数
func (k *keyedMutex) Lock(id int) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
