package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/storefront/internal/store"
)

// SettingRepository 设置数据访问接口
type SettingRepository interface {
	// Read 未保存过时返回 nil, nil
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileSettingRepository 单文件 JSON 设置
type FileSettingRepository struct {
	path string
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(path string) *FileSettingRepository {
	return &FileSettingRepository{path: path}
}

// Read 读取原始 JSON
func (r *FileSettingRepository) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write 原子写入
func (r *FileSettingRepository) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.WriteFileAtomic(r.path, data, 0o644)
}
