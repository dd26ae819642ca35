package models

import "time"

// Product 商品记录
type Product struct {
	ID                int            `json:"id"`
	Name              string         `json:"name"`
	Type              string         `json:"type"`
	Category          string         `json:"category"`
	Description       string         `json:"description"`
	Price             Money          `json:"price"`
	PromoPrice        *Money         `json:"promoPrice"`
	Weight            float64        `json:"weight"`
	EstimatedShipping *Money         `json:"estimatedShipping"`
	Options           ProductOptions `json:"options"`
	Health            ProductHealth  `json:"health"`
	VariantImages     VariantImages  `json:"variantImages"`
	Images            []string       `json:"images"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// ProductOptions 可选规格
type ProductOptions struct {
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

// ProductHealth 保健品成分信息
type ProductHealth struct {
	Ingredients []string `json:"ingredients"`
	Dosage      string   `json:"dosage"`
	Form        string   `json:"form"`
	Allergens   []string `json:"allergens"`
}

// VariantImages 规格到图片的映射
type VariantImages struct {
	Color map[string]string `json:"color"`
	Size  map[string]string `json:"size"`
}

func (p *Product) GetID() int   { return p.ID }
func (p *Product) SetID(id int) { p.ID = id }

// Touch 更新时间戳
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}
