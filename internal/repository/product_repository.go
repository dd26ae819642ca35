package repository

import (
	"context"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/store"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
}

// StoreProductRepository 加密记录存储实现
type StoreProductRepository struct {
	entities *EntityRepository[models.Product, *models.Product]
}

// NewProductRepository 创建商品仓库
func NewProductRepository(s *store.RecordStore) *StoreProductRepository {
	return &StoreProductRepository{entities: NewEntityRepository[models.Product](s, constants.KindProduct)}
}

// List 列出全部商品
func (r *StoreProductRepository) List(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded := r.entities.LoadAll(ctx)
	products := make([]models.Product, 0, len(loaded))
	for _, p := range loaded {
		products = append(products, *p)
	}
	return products, nil
}

// GetByID 根据 ID 获取商品
func (r *StoreProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.entities.LoadOne(ctx, id), nil
}

// Save 创建或更新商品
func (r *StoreProductRepository) Save(ctx context.Context, product *models.Product) error {
	_, err := r.entities.Save(ctx, product)
	return err
}

// Delete 删除商品
func (r *StoreProductRepository) Delete(ctx context.Context, id int) error {
	return r.entities.Delete(ctx, id)
}
