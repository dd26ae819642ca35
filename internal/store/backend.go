package store

import (
	"context"
	"errors"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Backend 加密记录的持久化后端，payload 为密文
type Backend interface {
	Read(ctx context.Context, kind string, id int) ([]byte, error)
	Write(ctx context.Context, kind string, id int, payload []byte) error
	// Delete 记录不存在时返回 nil
	Delete(ctx context.Context, kind string, id int) error
	// List 返回升序 id
	List(ctx context.Context, kind string) ([]int, error)
	MaxID(ctx context.Context, kind string) (int, error)
}
