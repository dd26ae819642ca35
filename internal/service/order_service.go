package service

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/metrics"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"
)

// OrphanRecorder 无归属推荐的落地方式（同步写文件或投递队列）
type OrphanRecorder interface {
	RecordOrphan(ctx context.Context, orphan models.OrphanReferral) error
}

// OrphanRecorderFunc 函数适配器
type OrphanRecorderFunc func(ctx context.Context, orphan models.OrphanReferral) error

// RecordOrphan 调用函数本身
func (f OrphanRecorderFunc) RecordOrphan(ctx context.Context, orphan models.OrphanReferral) error {
	return f(ctx, orphan)
}

// OrderItemInput 订单商品行输入；兼容购物车条目的 id、options 与 displayImage
type OrderItemInput struct {
	ProductID    NumberField           `json:"productId"`
	ID           NumberField           `json:"id"`
	Name         string                `json:"name"`
	Price        NumberField           `json:"price"`
	Quantity     NumberField           `json:"quantity"`
	Size         string                `json:"size"`
	Color        string                `json:"color"`
	Options      *OrderItemOptionInput `json:"options"`
	Image        string                `json:"image"`
	DisplayImage string                `json:"displayImage"`
}

// OrderItemOptionInput 购物车条目中已选的规格
type OrderItemOptionInput struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// OrderTotalsInput 客户端提交的金额汇总，subtotal 总是按商品行重新计算
type OrderTotalsInput struct {
	Shipping NumberField `json:"shipping"`
	Tax      NumberField `json:"tax"`
	Total    NumberField `json:"total"`
}

// CreateOrderInput 创建订单输入；结账页以 cart 提交商品行，金额字段位于顶层
type CreateOrderInput struct {
	Items           []OrderItemInput    `json:"items"`
	Cart            []OrderItemInput    `json:"cart"`
	Address         models.OrderAddress `json:"address"`
	Email           string              `json:"email"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentIntentID string              `json:"paymentIntentId"`
	Totals          OrderTotalsInput    `json:"totals"`
	Shipping        NumberField         `json:"shipping"`
	Tax             NumberField         `json:"tax"`
	Total           NumberField         `json:"total"`
}

func (in CreateOrderInput) lineItems() []OrderItemInput {
	if len(in.Items) > 0 {
		return in.Items
	}
	return in.Cart
}

// totals 嵌套 totals 优先，缺失的字段取顶层值
func (in CreateOrderInput) totals() OrderTotalsInput {
	merged := in.Totals
	if !merged.Shipping.Valid {
		merged.Shipping = in.Shipping
	}
	if !merged.Tax.Valid {
		merged.Tax = in.Tax
	}
	if !merged.Total.Valid {
		merged.Total = in.Total
	}
	return merged
}

// OrderService 订单服务
type OrderService struct {
	orderRepo    repository.OrderRepository
	affiliates   *AffiliateService
	orphans      OrphanRecorder
	metrics      *metrics.Metrics
	orphanPolicy string
}

// NewOrderService 创建订单服务；orphans 为空时直接写入推广账本目录
func NewOrderService(orderRepo repository.OrderRepository, affiliates *AffiliateService, orphans OrphanRecorder, m *metrics.Metrics, orphanPolicy string) *OrderService {
	if orphans == nil {
		orphans = affiliates
	}
	policy := strings.ToLower(strings.TrimSpace(orphanPolicy))
	if policy != constants.OrphanPolicyReject {
		policy = constants.OrphanPolicyFlag
	}
	return &OrderService{
		orderRepo:    orderRepo,
		affiliates:   affiliates,
		orphans:      orphans,
		metrics:      m,
		orphanPolicy: policy,
	}
}

// Create 保存订单并为推广员累计佣金；佣金失败不影响下单
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput, affiliateID *int) (*models.Order, error) {
	items, err := normalizeOrderItems(input.lineItems())
	if err != nil {
		return nil, err
	}
	if affiliateID != nil && *affiliateID <= 0 {
		return nil, ErrInvalidInput
	}

	if affiliateID != nil && s.orphanPolicy == constants.OrphanPolicyReject {
		if _, err := s.affiliates.Get(ctx, *affiliateID); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		Items:           items,
		AffiliateID:     affiliateID,
		Address:         input.Address,
		Email:           strings.TrimSpace(input.Email),
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		PaymentIntentID: strings.TrimSpace(input.PaymentIntentID),
		Status:          constants.OrderStatusPending,
	}
	order.Totals = buildOrderTotals(order.Subtotal(), input.totals())
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.RecordOrderCreated()
	logger.Infow("order_created", "order_id", order.ID, "subtotal", order.Totals.Subtotal.String())

	if affiliateID != nil {
		s.accrue(ctx, order, *affiliateID)
	}
	return order, nil
}

// List 列出全部订单
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.List(ctx)
}

// Get 获取订单
func (s *OrderService) Get(ctx context.Context, id int) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) accrue(ctx context.Context, order *models.Order, affiliateID int) {
	subtotal := order.Totals.Subtotal
	commission, err := s.affiliates.Accrue(ctx, affiliateID, order.ID, subtotal)
	switch {
	case err == nil:
		logger.Infow("order_affiliate_accrued",
			"order_id", order.ID,
			"affiliate_id", affiliateID,
			"commission", commission.String(),
		)
	case errors.Is(err, ErrAffiliateNotFound):
		s.flagOrphan(ctx, order.ID, affiliateID, subtotal, constants.OrphanReasonAffiliateMissing)
	case errors.Is(err, ErrAffiliateSuspended):
		s.flagOrphan(ctx, order.ID, affiliateID, subtotal, constants.OrphanReasonAffiliateSuspended)
	default:
		logger.Errorw("order_affiliate_accrue_failed",
			"order_id", order.ID,
			"affiliate_id", affiliateID,
			"error", err,
		)
	}
}

func (s *OrderService) flagOrphan(ctx context.Context, orderID, affiliateID int, amount models.Money, reason string) {
	logger.Warnw("order_orphan_referral",
		"order_id", orderID,
		"affiliate_id", affiliateID,
		"reason", reason,
	)
	s.metrics.RecordOrphanReferral(reason)
	orphan := models.OrphanReferral{
		OrderID:     orderID,
		AffiliateID: affiliateID,
		Amount:      amount,
		Reason:      reason,
	}
	if err := s.orphans.RecordOrphan(ctx, orphan); err != nil {
		logger.Errorw("order_orphan_record_failed", "order_id", orderID, "error", err)
	}
}

func normalizeOrderItems(inputs []OrderItemInput) ([]models.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, ErrInvalidOrderItem
	}
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if !in.Price.Valid || in.Price.Value.IsNegative() {
			return nil, ErrInvalidOrderItem
		}
		if !in.Quantity.Valid || !in.Quantity.Value.IsInteger() || in.Quantity.Value.IntPart() < 1 {
			return nil, ErrInvalidOrderItem
		}
		productID := in.ProductID
		if !productID.Valid {
			productID = in.ID
		}
		size, color := in.Size, in.Color
		if in.Options != nil {
			size = firstNonEmpty(size, in.Options.Size)
			color = firstNonEmpty(color, in.Options.Color)
		}
		items = append(items, models.OrderItem{
			ProductID: int(productID.Value.IntPart()),
			Name:      strings.TrimSpace(in.Name),
			Price:     in.Price.Money(),
			Quantity:  int(in.Quantity.Value.IntPart()),
			Size:      strings.TrimSpace(size),
			Color:     strings.TrimSpace(color),
			Image:     strings.TrimSpace(firstNonEmpty(in.Image, in.DisplayImage)),
		})
	}
	return items, nil
}

func buildOrderTotals(subtotal models.Money, in OrderTotalsInput) models.OrderTotals {
	totals := models.OrderTotals{
		Subtotal: subtotal,
		Shipping: in.Shipping.Money(),
		Tax:      in.Tax.Money(),
	}
	if in.Total.Valid {
		totals.Total = in.Total.Money()
	} else {
		totals.Total = subtotal.Plus(totals.Shipping).Plus(totals.Tax)
	}
	return totals
}
