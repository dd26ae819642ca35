package repository

import (
	"context"
	"strings"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/store"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	CountByRole(ctx context.Context, role string) (int, error)
}

// StoreUserRepository 加密记录存储实现
type StoreUserRepository struct {
	entities *EntityRepository[models.User, *models.User]
}

// NewUserRepository 创建用户仓库
func NewUserRepository(s *store.RecordStore) *StoreUserRepository {
	return &StoreUserRepository{entities: NewEntityRepository[models.User](s, constants.KindUser)}
}

// GetByID 根据 ID 获取用户
func (r *StoreUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.entities.LoadOne(ctx, id), nil
}

// GetByEmail 根据邮箱获取用户（不区分大小写）
func (r *StoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, nil
	}
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if NormalizeEmail(users[i].Email) == normalized {
			return &users[i], nil
		}
	}
	return nil, nil
}

// List 列出全部用户
func (r *StoreUserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded := r.entities.LoadAll(ctx)
	users := make([]models.User, 0, len(loaded))
	for _, u := range loaded {
		users = append(users, *u)
	}
	return users, nil
}

// Save 创建或更新用户
func (r *StoreUserRepository) Save(ctx context.Context, user *models.User) error {
	_, err := r.entities.Save(ctx, user)
	return err
}

// CountByRole 统计某角色用户数
func (r *StoreUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// NormalizeEmail 邮箱统一小写去空格
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
