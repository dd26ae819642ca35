package repository

import (
	"context"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/store"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
}

// StoreOrderRepository 加密记录存储实现
type StoreOrderRepository struct {
	entities *EntityRepository[models.Order, *models.Order]
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(s *store.RecordStore) *StoreOrderRepository {
	return &StoreOrderRepository{entities: NewEntityRepository[models.Order](s, constants.KindOrder)}
}

// List 列出全部订单
func (r *StoreOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded := r.entities.LoadAll(ctx)
	orders := make([]models.Order, 0, len(loaded))
	for _, o := range loaded {
		orders = append(orders, *o)
	}
	return orders, nil
}

// GetByID 根据 ID 获取订单
func (r *StoreOrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.entities.LoadOne(ctx, id), nil
}

// Create 创建订单，始终分配新 id
func (r *StoreOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = 0
	_, err := r.entities.Save(ctx, order)
	return err
}
