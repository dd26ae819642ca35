// Package objstore 媒体文件对象存储（本地目录或 MinIO）
package objstore

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey 对象键非法
var ErrInvalidKey = errors.New("invalid object key")

// ObjectInfo 对象元信息
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store 媒体对象存储
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Open 调用方负责关闭返回的 ReadCloser
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// CleanKey 规范化对象键，拒绝目录穿越
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func contentTypeByKey(key string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(key))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
