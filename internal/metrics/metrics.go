// Package metrics Prometheus 指标导出
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 商城指标，方法均可在 nil 接收者上安全调用
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 订单与推广账本指标
	OrdersCreatedTotal     prometheus.Counter
	CommissionsTotal       prometheus.Counter
	CommissionAmountTotal  prometheus.Counter
	PayoutsTotal           *prometheus.CounterVec
	PayoutAmountTotal      prometheus.Counter
	OrphanReferralsTotal   *prometheus.CounterVec
	LedgerMutationDuration *prometheus.HistogramVec
}

// New 创建独立注册表上的指标实例
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		OrdersCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
		),
		CommissionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "affiliate_commissions_total",
				Help:      "Total commissions accrued",
			},
		),
		CommissionAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "affiliate_commission_amount_total",
				Help:      "Sum of accrued commission amounts",
			},
		),
		PayoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "affiliate_payouts_total",
				Help:      "Total payouts processed",
			},
			[]string{"trigger"},
		),
		PayoutAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "affiliate_payout_amount_total",
				Help:      "Sum of paid out amounts",
			},
		),
		OrphanReferralsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "affiliate_orphan_referrals_total",
				Help:      "Referrals that could not be attributed to an active affiliate",
			},
			[]string{"reason"},
		),
		LedgerMutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "affiliate_ledger_mutation_duration_seconds",
				Help:      "Affiliate ledger load-mutate-save duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),
	}
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 Prometheus HTTP Handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted 记录进行中的请求，返回结束回调
func (m *Metrics) RequestStarted() func() {
	if m == nil {
		return func() {}
	}
	m.HTTPRequestsInFlight.Inc()
	return m.HTTPRequestsInFlight.Dec
}

// RecordHTTPRequest 记录请求指标，path 应为路由模板避免高基数
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOrderCreated 记录订单创建
func (m *Metrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreatedTotal.Inc()
}

// RecordCommission 记录佣金入账
func (m *Metrics) RecordCommission(amount float64) {
	if m == nil {
		return
	}
	m.CommissionsTotal.Inc()
	m.CommissionAmountTotal.Add(amount)
}

// RecordPayout 记录结算，trigger 为 manual 或 scheduled
func (m *Metrics) RecordPayout(trigger string, amount float64) {
	if m == nil {
		return
	}
	m.PayoutsTotal.WithLabelValues(trigger).Inc()
	m.PayoutAmountTotal.Add(amount)
}

// RecordOrphanReferral 记录无归属推荐
func (m *Metrics) RecordOrphanReferral(reason string) {
	if m == nil {
		return
	}
	m.OrphanReferralsTotal.WithLabelValues(reason).Inc()
}

// ObserveLedgerMutation 记录账本变更耗时
func (m *Metrics) ObserveLedgerMutation(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LedgerMutationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
