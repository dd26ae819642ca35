package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 200 {
		t.Fatalf("unexpected scrape status: %d", w.Code)
	}
	return w.Body.String()
}

func TestRecordersUpdateCounters(t *testing.T) {
	m := New("storefront_test")
	m.RecordOrderCreated()
	m.RecordCommission(4)
	m.RecordPayout("manual", 4)
	m.RecordOrphanReferral("affiliate_missing")
	m.RecordHTTPRequest("GET", "/products", 200, 5*time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		"storefront_test_orders_created_total 1",
		"storefront_test_affiliate_commission_amount_total 4",
		`storefront_test_affiliate_payouts_total{trigger="manual"} 1`,
		`storefront_test_affiliate_orphan_referrals_total{reason="affiliate_missing"} 1`,
		`storefront_test_http_requests_total{method="GET",path="/products",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	first := New("storefront_test")
	second := New("storefront_test")
	first.RecordOrderCreated()

	if !strings.Contains(scrape(t, second), "storefront_test_orders_created_total 0") {
		t.Fatalf("second registry should start from zero")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordOrderCreated()
	m.RecordCommission(1)
	m.RecordPayout("scheduled", 1)
	m.RecordOrphanReferral("x")
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	m.ObserveLedgerMutation("accrue", time.Millisecond)
	m.RequestStarted()()
}
