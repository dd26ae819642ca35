package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/provider"
	"github.com/storefront/internal/queue"
	"github.com/storefront/internal/repository"
	"github.com/storefront/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAffiliateService(t *testing.T) (*service.AffiliateService, *service.AffiliateSettingService) {
	t.Helper()
	dir := t.TempDir()
	settings := service.NewAffiliateSettingService(repository.NewSettingRepository(filepath.Join(dir, "affiliate-settings.json")))
	repo := repository.NewAffiliateRepository(filepath.Join(dir, "affiliates"), nil)
	return service.NewAffiliateService(repo, settings, nil, "http://localhost:3000"), settings
}

func TestHandleOrphanReferralPersists(t *testing.T) {
	affiliates, _ := setupAffiliateService(t)
	consumer := NewConsumer(&provider.Container{AffiliateService: affiliates})

	orphan := models.OrphanReferral{
		OrderID:     7,
		AffiliateID: 404,
		Amount:      models.NewMoney(19.99),
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Reason:      constants.OrphanReasonAffiliateMissing,
	}
	task, err := queue.NewOrphanReferralTask(queue.OrphanReferralPayload{Orphan: orphan})
	require.NoError(t, err)
	require.NoError(t, consumer.handleOrphanReferral(context.Background(), task))

	orphans, err := affiliates.ListOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, 404, orphans[0].AffiliateID)
	assert.True(t, orphans[0].Date.Equal(orphan.Date))
}

func TestHandleOrphanReferralSkipsInvalid(t *testing.T) {
	affiliates, _ := setupAffiliateService(t)
	consumer := NewConsumer(&provider.Container{AffiliateService: affiliates})

	task, err := queue.NewOrphanReferralTask(queue.OrphanReferralPayload{})
	require.NoError(t, err)
	require.NoError(t, consumer.handleOrphanReferral(context.Background(), task))

	orphans, err := affiliates.ListOrphans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orphans)

	var nilConsumer *Consumer
	assert.NoError(t, nilConsumer.handleOrphanReferral(context.Background(), task))
}

func TestPayoutSchedulerRunOnce(t *testing.T) {
	ctx := context.Background()
	affiliates, settings := setupAffiliateService(t)
	weekly := constants.PayoutScheduleWeekly
	_, err := settings.Update(ctx, service.AffiliateSettingInput{
		MinimumPayout:  service.Number(10),
		PayoutSchedule: &weekly,
	})
	require.NoError(t, err)

	_, err = affiliates.CreatePending(ctx, 3, "aff@example.com", 0.1, nil)
	require.NoError(t, err)
	_, err = affiliates.Approve(ctx, 3)
	require.NoError(t, err)
	_, err = affiliates.Accrue(ctx, 3, 1, models.NewMoney(200))
	require.NoError(t, err)

	scheduler := NewPayoutScheduler(affiliates, 0)
	assert.Equal(t, defaultPayoutCheckInterval, scheduler.interval)

	assert.Empty(t, scheduler.RunOnce(ctx), "payout should wait for the weekly window")

	scheduler.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	ids := scheduler.RunOnce(ctx)
	require.Len(t, ids, 1)

	aff, err := affiliates.Get(ctx, 3)
	require.NoError(t, err)
	assert.True(t, aff.PendingPayout.IsZero())
	require.Len(t, aff.Payouts, 1)
	assert.Equal(t, "20.00", aff.Payouts[0].Amount.StringFixed(2))
}

func TestPayoutSchedulerStopsOnCancel(t *testing.T) {
	affiliates, _ := setupAffiliateService(t)
	scheduler := NewPayoutScheduler(affiliates, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
	require.NoError(t, scheduler.Stop(context.Background()))
	require.NoError(t, scheduler.Stop(context.Background()))
}

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	_, err := NewService(&config.QueueConfig{Enabled: false}, NewConsumer(&provider.Container{}))
	assert.ErrorIs(t, err, ErrQueueDisabled)

	_, err = NewService(&config.QueueConfig{Enabled: true}, nil)
	assert.ErrorIs(t, err, ErrConsumerMissing)
}
