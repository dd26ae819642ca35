package service

import (
	"context"
	"fmt"

	"github.com/storefront/internal/models"
	"github.com/storefront/internal/shipping/easypost"
)

// RateQuoter 运费报价客户端
type RateQuoter interface {
	Rates(ctx context.Context, input easypost.RateInput) (*easypost.RateQuote, error)
}

// ShippingPreviewInput 运费预览输入，weight 单位为磅
type ShippingPreviewInput struct {
	Weight  NumberField `json:"weight"`
	FromZip string      `json:"fromZip"`
	ToZip   string      `json:"toZip"`
}

// ShippingRate 单个报价
type ShippingRate struct {
	Carrier string       `json:"carrier"`
	Service string       `json:"service"`
	Rate    models.Money `json:"rate"`
}

// ShippingPreview 报价结果
type ShippingPreview struct {
	Rates      []ShippingRate `json:"rates"`
	LowestRate *models.Money  `json:"lowestRate"`
}

// ShippingService 运费预览服务
type ShippingService struct {
	quoter RateQuoter
}

// NewShippingService quoter 为 nil 表示未配置
func NewShippingService(quoter RateQuoter) *ShippingService {
	return &ShippingService{quoter: quoter}
}

// Preview 查询运费报价
func (s *ShippingService) Preview(ctx context.Context, input ShippingPreviewInput) (*ShippingPreview, error) {
	if s.quoter == nil || !input.Weight.Present() {
		return nil, ErrShippingNotConfigured
	}
	if input.Weight.Value.IsNegative() {
		return nil, ErrInvalidInput
	}
	quote, err := s.quoter.Rates(ctx, easypost.RateInput{
		Weight:  input.Weight.Value,
		FromZip: input.FromZip,
		ToZip:   input.ToZip,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShippingFailed, err)
	}
	preview := &ShippingPreview{Rates: make([]ShippingRate, 0, len(quote.Rates))}
	for _, r := range quote.Rates {
		preview.Rates = append(preview.Rates, ShippingRate{
			Carrier: r.Carrier,
			Service: r.Service,
			Rate:    models.NewMoneyFromDecimal(r.Rate),
		})
	}
	if quote.LowestRate != nil {
		lowest := models.NewMoneyFromDecimal(*quote.LowestRate)
		preview.LowestRate = &lowest
	}
	return preview, nil
}
