package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/store"
)

// Entity 可存入加密记录存储的实体
type Entity interface {
	GetID() int
	SetID(id int)
	Touch(now time.Time)
}

// EntityRepository 基于加密记录存储的通用实体仓储
type EntityRepository[T any, P interface {
	*T
	Entity
}] struct {
	store *store.RecordStore
	kind  string
	now   func() time.Time
}

// NewEntityRepository 创建实体仓储
func NewEntityRepository[T any, P interface {
	*T
	Entity
}](s *store.RecordStore, kind string) *EntityRepository[T, P] {
	return &EntityRepository[T, P]{store: s, kind: kind, now: time.Now}
}

// Kind 实体类型
func (r *EntityRepository[T, P]) Kind() string {
	return r.kind
}

// Save 分配 id（为 0 时）、刷新时间戳并加密写入
func (r *EntityRepository[T, P]) Save(ctx context.Context, entity P) (P, error) {
	if entity.GetID() <= 0 {
		id, err := r.store.NextID(ctx, r.kind)
		if err != nil {
			return nil, err
		}
		entity.SetID(id)
	}
	entity.Touch(r.now().UTC())

	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	if err := r.store.Put(ctx, r.kind, entity.GetID(), payload); err != nil {
		return nil, err
	}
	return entity, nil
}

// LoadAll 加载全部记录；单条失败记录日志并跳过
func (r *EntityRepository[T, P]) LoadAll(ctx context.Context) []P {
	ids, err := r.store.IDs(ctx, r.kind)
	if err != nil {
		logger.Warnw("repository_list_failed", "kind", r.kind, "error", err)
		return []P{}
	}
	items := make([]P, 0, len(ids))
	for _, id := range ids {
		item, err := r.load(ctx, id)
		if err != nil {
			logger.Warnw("repository_record_load_failed", "kind", r.kind, "id", id, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// LoadOne 按 id 加载；不存在、为空或无法解密时返回 nil
func (r *EntityRepository[T, P]) LoadOne(ctx context.Context, id int) P {
	if id <= 0 {
		return nil
	}
	item, err := r.load(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Debugw("repository_record_missing", "kind", r.kind, "id", id)
		} else {
			logger.Warnw("repository_record_load_failed", "kind", r.kind, "id", id, "error", err)
		}
		return nil
	}
	return item
}

// Delete 删除记录，不存在时无操作
func (r *EntityRepository[T, P]) Delete(ctx context.Context, id int) error {
	return r.store.Delete(ctx, r.kind, id)
}

func (r *EntityRepository[T, P]) load(ctx context.Context, id int) (P, error) {
	plain, err := r.store.Get(ctx, r.kind, id)
	if err != nil {
		return nil, err
	}
	var item T
	if err := json.Unmarshal(plain, &item); err != nil {
		return nil, err
	}
	return P(&item), nil
}
