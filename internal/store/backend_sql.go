package store

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend 将密文记录存入 records 表
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend 创建数据库后端并迁移 records 表
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Read(ctx context.Context, kind string, id int) ([]byte, error) {
	var record models.Record
	err := b.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.Payload), nil
}

func (b *SQLBackend) Write(ctx context.Context, kind string, id int, payload []byte) error {
	record := models.Record{
		Kind:      kind,
		ID:        id,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
}

func (b *SQLBackend) Delete(ctx context.Context, kind string, id int) error {
	return b.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).Delete(&models.Record{}).Error
}

func (b *SQLBackend) List(ctx context.Context, kind string) ([]int, error) {
	var ids []int
	err := b.db.WithContext(ctx).Model(&models.Record{}).
		Where("kind = ?", kind).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (b *SQLBackend) MaxID(ctx context.Context, kind string) (int, error) {
	var maxID int
	err := b.db.WithContext(ctx).Model(&models.Record{}).
		Where("kind = ?", kind).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}
