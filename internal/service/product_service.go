package service

import (
	"context"
	"strings"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductOptionsInput 规格输入，nil 表示保持原值
type ProductOptionsInput struct {
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

// ProductInput 商品写入载荷；数字字段接受字符串，指针字段未提供时保持原值
type ProductInput struct {
	Name              *string               `json:"name"`
	Type              *string               `json:"type"`
	Category          *string               `json:"category"`
	Description       *string               `json:"description"`
	Price             NumberField           `json:"price"`
	PromoPrice        *NumberField          `json:"promoPrice"`
	Weight            NumberField           `json:"weight"`
	EstimatedShipping *NumberField          `json:"estimatedShipping"`
	Options           *ProductOptionsInput  `json:"options"`
	Health            *models.ProductHealth `json:"health"`
	VariantImages     *models.VariantImages `json:"variantImages"`
	Images            []string              `json:"images"`
}

// List 列出商品（统一结构）
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		NormalizeProduct(&products[i])
	}
	return products, nil
}

// Get 获取商品
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	NormalizeProduct(product)
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	if product.Name == "" {
		return nil, ErrProductInvalid
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 合并更新，未提供的字段保持原值
func (s *ProductService) Update(ctx context.Context, id int, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	NormalizeProduct(product)
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品，不存在时不报错
func (s *ProductService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func applyProductInput(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		p.Type = strings.TrimSpace(*in.Type)
	}
	if in.Category != nil {
		p.Category = strings.ToLower(strings.TrimSpace(*in.Category))
	}
	if in.Description != nil {
		p.Description = *in.Description
	}

	if in.Price.Present() {
		if in.Price.Value.IsNegative() {
			return ErrProductInvalid
		}
		p.Price = in.Price.Money()
	}
	if in.Weight.Present() {
		if in.Weight.Value.IsNegative() {
			return ErrProductInvalid
		}
		p.Weight = in.Weight.Float64()
	}
	if in.PromoPrice != nil {
		p.PromoPrice = in.PromoPrice.MoneyPtr()
	}
	if in.EstimatedShipping != nil {
		p.EstimatedShipping = in.EstimatedShipping.MoneyPtr()
	}
	if (p.PromoPrice != nil && p.PromoPrice.IsNegative()) || (p.EstimatedShipping != nil && p.EstimatedShipping.IsNegative()) {
		return ErrProductInvalid
	}

	if in.Options != nil {
		if in.Options.Sizes != nil {
			p.Options.Sizes = cloneStrings(in.Options.Sizes)
		}
		if in.Options.Colors != nil {
			p.Options.Colors = cloneStrings(in.Options.Colors)
		}
	}
	if in.Health != nil {
		p.Health = *in.Health
	}
	if in.VariantImages != nil {
		p.VariantImages = models.VariantImages{
			Color: cloneStringMap(in.VariantImages.Color),
			Size:  cloneStringMap(in.VariantImages.Size),
		}
	}
	if in.Images != nil {
		p.Images = cloneStrings(in.Images)
	}

	NormalizeProduct(p)
	return nil
}

// NormalizeProduct 补齐缺省结构；非保健品清空成分信息
func NormalizeProduct(p *models.Product) {
	if p.Options.Sizes == nil {
		p.Options.Sizes = []string{}
	}
	if p.Options.Colors == nil {
		p.Options.Colors = []string{}
	}
	if p.Category == constants.ProductCategorySupplements {
		p.Health = models.ProductHealth{
			Ingredients: cloneStrings(p.Health.Ingredients),
			Dosage:      strings.TrimSpace(p.Health.Dosage),
			Form:        strings.TrimSpace(p.Health.Form),
			Allergens:   cloneStrings(p.Health.Allergens),
		}
	} else {
		p.Health = models.ProductHealth{Ingredients: []string{}, Allergens: []string{}}
	}
	if p.VariantImages.Color == nil {
		p.VariantImages.Color = map[string]string{}
	}
	if p.VariantImages.Size == nil {
		p.VariantImages.Size = map[string]string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.PromoPrice != nil && p.PromoPrice.IsZero() {
		p.PromoPrice = nil
	}
	if p.EstimatedShipping != nil && p.EstimatedShipping.IsZero() {
		p.EstimatedShipping = nil
	}
}
