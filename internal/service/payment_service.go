package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/payment/stripe"
)

// PaymentIntentCreator 创建 PaymentIntent 的渠道客户端
type PaymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, input stripe.PaymentIntentInput) (*stripe.PaymentIntent, error)
}

// CreatePaymentIntentInput 请求载荷，amount 为最小货币单位
type CreatePaymentIntentInput struct {
	Amount   NumberField `json:"amount"`
	Currency string      `json:"currency"`
}

// PaymentIntentResult 返回给前端的 client secret
type PaymentIntentResult struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentService 钱包支付意图服务
type PaymentService struct {
	stripe PaymentIntentCreator
}

// NewPaymentService client 为 nil 表示未配置
func NewPaymentService(client PaymentIntentCreator) *PaymentService {
	return &PaymentService{stripe: client}
}

// CreatePaymentIntent 金额四舍五入到整数后创建
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, input CreatePaymentIntentInput) (*PaymentIntentResult, error) {
	if s.stripe == nil {
		return nil, ErrPaymentNotConfigured
	}
	amount := input.Amount.Value.Round(0)
	if !input.Amount.Valid || !amount.IsPositive() {
		return nil, ErrInvalidInput
	}
	intent, err := s.stripe.CreatePaymentIntent(ctx, stripe.PaymentIntentInput{
		Amount:   amount.IntPart(),
		Currency: strings.TrimSpace(input.Currency),
	})
	if err != nil {
		logger.Errorw("payment_intent_create_failed", "amount", amount.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}
	logger.Infow("payment_intent_created", "intent_id", intent.ID, "amount", intent.Amount)
	return &PaymentIntentResult{ClientSecret: intent.ClientSecret}, nil
}
