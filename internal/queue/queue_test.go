package queue

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
)

func TestOrphanReferralTaskRoundTrip(t *testing.T) {
	orphan := models.OrphanReferral{
		OrderID:     12,
		AffiliateID: 99,
		Amount:      models.NewMoney(42.5),
		Date:        time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Reason:      constants.OrphanReasonAffiliateMissing,
	}
	task, err := NewOrphanReferralTask(OrphanReferralPayload{Orphan: orphan})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskAffiliateOrphanReferral {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseOrphanReferralTask(task)
	if err != nil {
		t.Fatalf("parse task failed: %v", err)
	}
	got := payload.Orphan
	if got.OrderID != 12 || got.AffiliateID != 99 || got.Reason != constants.OrphanReasonAffiliateMissing {
		t.Fatalf("unexpected orphan: %+v", got)
	}
	if !got.Amount.Equal(orphan.Amount.Decimal) || !got.Date.Equal(orphan.Date) {
		t.Fatalf("unexpected amount or date: %+v", got)
	}
}

func TestParseOrphanReferralTaskNil(t *testing.T) {
	if _, err := ParseOrphanReferralTask(nil); err == nil {
		t.Fatalf("expected error for nil task")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.RecordOrphan(context.Background(), models.OrphanReferral{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Port: 6380, Concurrency: 0})
	if opt.Addr != "127.0.0.1:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected queues: %+v", cfg.Queues)
	}
}

func TestBuildServerConfigOverrides(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{
		Host:        "redis.internal",
		Password:    "pw",
		DB:          3,
		Concurrency: 2,
		Queues:      map[string]int{"default": 3, "low": 1},
	})
	if opt.Addr != "redis.internal:6379" || opt.Password != "pw" || opt.DB != 3 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 2 || cfg.Queues["low"] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestOrphanTaskIDPerOrder(t *testing.T) {
	if orphanTaskID(12) != "orphan-order-12" {
		t.Fatalf("unexpected task id: %s", orphanTaskID(12))
	}
	if orphanTaskID(12) == orphanTaskID(13) {
		t.Fatalf("task ids must differ per order")
	}
}
