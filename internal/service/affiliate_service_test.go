package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAffiliateServiceTest(t *testing.T) (*AffiliateService, *AffiliateSettingService, string) {
	t.Helper()
	dir := t.TempDir()
	affiliateDir := filepath.Join(dir, "affiliates")
	settings := NewAffiliateSettingService(repository.NewSettingRepository(filepath.Join(dir, "affiliate-settings.json")))
	svc := NewAffiliateService(repository.NewAffiliateRepository(affiliateDir, nil), settings, nil, "http://shop.test/")
	return svc, settings, affiliateDir
}

func createActiveAffiliate(t *testing.T, svc *AffiliateService, id int, rate float64) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.CreatePending(ctx, id, "aff@example.com", rate, nil); err != nil {
		t.Fatalf("create pending affiliate failed: %v", err)
	}
	if _, err := svc.Approve(ctx, id); err != nil {
		t.Fatalf("approve affiliate failed: %v", err)
	}
}

func assertLedgerInvariant(t *testing.T, a *models.Affiliate) {
	t.Helper()
	assert.True(t, a.PendingPayout.Equal(a.PendingCommissionTotal().Decimal),
		"pendingPayout=%s pending commissions=%s", a.PendingPayout, a.PendingCommissionTotal())
	assert.False(t, a.PendingPayout.IsNegative())
}

func TestAffiliateCreatePendingDefaultsAndDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := setupAffiliateServiceTest(t)

	a, err := svc.CreatePending(ctx, 7, "a@example.com", 0, &models.AffiliateApplication{Status: constants.AffiliateStatusPending})
	require.NoError(t, err)
	assert.Equal(t, constants.AffiliateStatusPending, a.Status)
	assert.Equal(t, 0.10, a.CommissionRate)
	assert.Equal(t, 7, a.UserID)

	raw, err := os.ReadFile(filepath.Join(dir, "affiliate-7.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"commissions": []`)
	assert.Contains(t, string(raw), `"pendingPayout": 0.00`)

	_, err = svc.CreatePending(ctx, 7, "a@example.com", 0, nil)
	assert.ErrorIs(t, err, ErrAffiliateExists)

	_, err = svc.CreatePending(ctx, 8, "b@example.com", 1.5, nil)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestAffiliateCreatePendingUsesSettingsDefaultRate(t *testing.T) {
	ctx := context.Background()
	svc, settings, _ := setupAffiliateServiceTest(t)

	_, err := settings.Update(ctx, AffiliateSettingInput{DefaultRate: Number(0.25)})
	require.NoError(t, err)

	a, err := svc.CreatePending(ctx, 3, "c@example.com", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, a.CommissionRate)
}

func TestAffiliateApproveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.1)

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Approve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.AffiliateStatusActive, second.Status)
	assert.Equal(t, first.Commissions, second.Commissions)
	assert.True(t, first.PendingPayout.Equal(second.PendingPayout.Decimal))

	_, err = svc.Approve(ctx, 404)
	assert.ErrorIs(t, err, ErrAffiliateNotFound)
	_, err = svc.Suspend(ctx, 404)
	assert.ErrorIs(t, err, ErrAffiliateNotFound)
}

func TestAffiliateSetCommissionRate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.1)

	tests := []struct {
		name    string
		id      int
		rate    float64
		wantErr error
	}{
		{name: "valid", id: 1, rate: 0.2},
		{name: "upper bound", id: 1, rate: 1},
		{name: "zero", id: 1, rate: 0, wantErr: ErrInvalidRate},
		{name: "negative", id: 1, rate: -0.1, wantErr: ErrInvalidRate},
		{name: "too large", id: 1, rate: 1.01, wantErr: ErrInvalidRate},
		{name: "missing", id: 2, rate: 0.2, wantErr: ErrAffiliateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.SetCommissionRate(ctx, tt.id, tt.rate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rate, a.CommissionRate)
		})
	}
}

func TestAffiliateAccrueAndPayout(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 5, 0.1)

	commission, err := svc.Accrue(ctx, 5, 1, models.NewMoney(60))
	require.NoError(t, err)
	assert.Equal(t, "6.00", commission.String())

	_, err = svc.RecordCommission(ctx, 5, 2, models.NewMoney(4.5))
	require.NoError(t, err)

	a, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, a.Referrals, 1)
	assert.Len(t, a.Commissions, 2)
	assert.Equal(t, "10.50", a.PendingPayout.String())
	assertLedgerInvariant(t, a)

	payout, err := svc.ProcessPayout(ctx, 5, PayoutTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, "10.50", payout.Amount.String())
	assert.Equal(t, constants.PayoutStatusPaid, payout.Status)

	a, err = svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, a.PendingPayout.IsZero())
	assert.Equal(t, "10.50", a.TotalCommissions.String())
	require.NotNil(t, a.LastPayoutDate)
	for _, c := range a.Commissions {
		assert.Equal(t, constants.CommissionStatusPaid, c.Status)
	}
	assertLedgerInvariant(t, a)

	_, err = os.Stat(filepath.Join(dir, "payouts", fmt.Sprintf("payout-%d.json", payout.ID)))
	require.NoError(t, err)
	payouts, err := svc.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, payout.ID, payouts[0].ID)

	second, err := svc.ProcessPayout(ctx, 5, PayoutTriggerManual)
	require.NoError(t, err)
	assert.True(t, second.Amount.IsZero())
	assert.Greater(t, second.ID, payout.ID)

	a, err = svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "10.50", a.TotalCommissions.String())
}

func TestAffiliateAccrueRoundsCommission(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.15)

	commission, err := svc.Accrue(ctx, 1, 9, models.NewMoney(33.33))
	require.NoError(t, err)
	assert.Equal(t, "5", commission.StringFixed(0))
	assert.Equal(t, "5.00", commission.StringFixed(2))
}

func TestAffiliateAccrueRejectsSuspended(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.1)
	_, err := svc.Suspend(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Accrue(ctx, 1, 1, models.NewMoney(100))
	assert.True(t, errors.Is(err, ErrAffiliateSuspended))

	a, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, a.Referrals)
	assert.Empty(t, a.Commissions)
}

func TestAffiliatePendingAccrues(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	_, err := svc.CreatePending(ctx, 2, "p@example.com", 0.2, nil)
	require.NoError(t, err)

	commission, err := svc.Accrue(ctx, 2, 1, models.NewMoney(50))
	require.NoError(t, err)
	assert.Equal(t, "10.00", commission.String())
}

func TestAffiliateConcurrentAccrueLosesNoUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.1)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers+1)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(orderID int) {
			defer wg.Done()
			if _, err := svc.Accrue(ctx, 1, orderID, models.NewMoney(10)); err != nil {
				errs <- err
			}
		}(i + 1)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := svc.ProcessPayout(ctx, 1, PayoutTriggerManual); err != nil {
			errs <- err
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent mutation failed: %v", err)
	}

	a, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, a.Referrals, workers)
	assert.Len(t, a.Commissions, workers)
	total := a.TotalCommissions.Plus(a.PendingPayout)
	assert.Equal(t, "20.00", total.String())
	assertLedgerInvariant(t, a)
}

func TestAffiliateStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 1, 0.1)
	createActiveAffiliate(t, svc, 2, 0.1)

	_, err := svc.Accrue(ctx, 1, 1, models.NewMoney(100))
	require.NoError(t, err)
	_, err = svc.RecordReferral(ctx, 1, 2, models.NewMoney(30))
	require.NoError(t, err)
	_, err = svc.RecordReferral(ctx, 1, 3, models.NewMoney(30))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSales)
	assert.Equal(t, 33.3, stats.ConversionRate)
	assert.Equal(t, "10.00", stats.PendingCommissions.String())

	_, err = svc.Stats(ctx, 99)
	assert.ErrorIs(t, err, ErrAffiliateNotFound)

	_, err = svc.ProcessPayout(ctx, 1, PayoutTriggerManual)
	require.NoError(t, err)
	_, err = svc.Accrue(ctx, 2, 4, models.NewMoney(20))
	require.NoError(t, err)

	admin, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, admin.TotalAffiliates)
	assert.Equal(t, "10.00", admin.TotalCommissionsPaid.String())
	assert.Equal(t, "2.00", admin.PendingPayouts.String())
	assert.Equal(t, 4, admin.TotalSalesGenerated)
}

func TestAffiliateCommissionDataAndLink(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupAffiliateServiceTest(t)
	createActiveAffiliate(t, svc, 4, 0.3)

	data, err := svc.CommissionData(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.3, data.Rate)
	assert.Equal(t, constants.PayoutScheduleMonthly, data.PayoutSchedule)
	assert.Equal(t, 30, data.CookieDuration)

	data, err = svc.CommissionData(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 0.10, data.Rate)

	assert.Equal(t, "http://shop.test/product/12?aff=4", svc.Link(4, "12"))
}

func TestAffiliateRecordOrphan(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := setupAffiliateServiceTest(t)

	err := svc.RecordOrphan(ctx, models.OrphanReferral{
		OrderID:     11,
		AffiliateID: 77,
		Amount:      models.NewMoney(42),
		Reason:      constants.OrphanReasonAffiliateMissing,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "orphans", "orphan-11.json"))
	require.NoError(t, err)
	orphans, err := svc.ListOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, 77, orphans[0].AffiliateID)
	assert.False(t, orphans[0].Date.IsZero())
}

func TestAffiliateRunScheduledPayouts(t *testing.T) {
	ctx := context.Background()
	svc, settings, _ := setupAffiliateServiceTest(t)

	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return joined }
	createActiveAffiliate(t, svc, 1, 0.5)
	createActiveAffiliate(t, svc, 2, 0.5)
	createActiveAffiliate(t, svc, 3, 0.5)
	_, err := svc.Suspend(ctx, 3)
	require.NoError(t, err)

	_, err = svc.Accrue(ctx, 1, 1, models.NewMoney(200))
	require.NoError(t, err)
	_, err = svc.Accrue(ctx, 2, 2, models.NewMoney(20))
	require.NoError(t, err)
	_, err = svc.RecordCommission(ctx, 3, 3, models.NewMoney(500))
	require.NoError(t, err)

	notDue := joined.Add(10 * 24 * time.Hour)
	svc.now = func() time.Time { return notDue }
	payouts, err := svc.RunScheduledPayouts(ctx, notDue)
	require.NoError(t, err)
	assert.Empty(t, payouts)

	due := joined.Add(31 * 24 * time.Hour)
	svc.now = func() time.Time { return due }
	payouts, err = svc.RunScheduledPayouts(ctx, due)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, 1, payouts[0].AffiliateID)
	assert.Equal(t, "100.00", payouts[0].Amount.String())

	payouts, err = svc.RunScheduledPayouts(ctx, due.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, payouts)

	manual := constants.PayoutScheduleManual
	_, err = settings.Update(ctx, AffiliateSettingInput{PayoutSchedule: &manual, MinimumPayout: Number(0)})
	require.NoError(t, err)
	payouts, err = svc.RunScheduledPayouts(ctx, due.Add(365*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

type flakyLedgerRepo struct {
	repository.AffiliateRepository
	failSave bool
}

func (r *flakyLedgerRepo) Save(ctx context.Context, a *models.Affiliate) error {
	if r.failSave {
		return errors.New("disk full")
	}
	return r.AffiliateRepository.Save(ctx, a)
}

func TestAffiliatePayoutWritesFileOnlyAfterLedgerSaved(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := &flakyLedgerRepo{AffiliateRepository: repository.NewAffiliateRepository(filepath.Join(dir, "affiliates"), nil)}
	svc := NewAffiliateService(repo, nil, nil, "http://shop.test/")
	createActiveAffiliate(t, svc, 5, 0.1)
	_, err := svc.Accrue(ctx, 5, 1, models.NewMoney(80))
	require.NoError(t, err)

	repo.failSave = true
	_, err = svc.ProcessPayout(ctx, 5, PayoutTriggerManual)
	require.Error(t, err)

	payouts, err := svc.ListPayouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, payouts)
	a, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "8.00", a.PendingPayout.String())
	assert.Empty(t, a.Payouts)

	repo.failSave = false
	payout, err := svc.ProcessPayout(ctx, 5, PayoutTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, "8.00", payout.Amount.String())

	payouts, err = svc.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, 5, payouts[0].AffiliateID)
}

func TestAffiliateLegacyPaidLedgerKeepsAccruing(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := setupAffiliateServiceTest(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := `{
  "id": 7, "userId": 7, "email": "legacy@x.io", "status": "active",
  "commissionRate": 0.1, "totalCommissions": 4, "pendingPayout": 0,
  "commissions": [{"orderId": 3, "amount": 4, "date": "2024-05-01T10:00:00.000Z", "status": "pending"}],
  "referrals": [{"orderId": 3, "date": "2024-05-01T10:00:00.000Z", "amount": 40}],
  "joinedDate": "2024-04-01T09:00:00.000Z",
  "lastPayoutDate": "2024-05-29T16:26:40.000Z",
  "payouts": [{"id": 1717000000000, "affiliateId": "7", "amount": 4, "date": "2024-05-29T16:26:40.000Z", "status": "paid"}]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "affiliate-7.json"), []byte(legacy), 0o600))

	commission, err := svc.Accrue(ctx, 7, 11, models.NewMoney(50))
	require.NoError(t, err)
	assert.Equal(t, "5.00", commission.String())

	payout, err := svc.ProcessPayout(ctx, 7, PayoutTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, "5.00", payout.Amount.String())

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all[0].Payouts, 2)
	assert.Equal(t, 7, all[0].Payouts[0].AffiliateID)
	assert.Equal(t, "9.00", all[0].TotalCommissions.String())
}
