package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const recordFileSuffix = ".enc.json"

// FileBackend 每条记录一个文件：{root}/{kind}s/{kind}-{id:04d}.enc.json
type FileBackend struct {
	root string
}

// NewFileBackend 创建文件后端
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{root: root}
}

// Root 数据根目录
func (b *FileBackend) Root() string {
	return b.root
}

// Dir 某类记录所在目录
func (b *FileBackend) Dir(kind string) string {
	return filepath.Join(b.root, kind+"s")
}

// Path 记录文件路径
func (b *FileBackend) Path(kind string, id int) string {
	return filepath.Join(b.Dir(kind), fmt.Sprintf("%s-%04d%s", kind, id, recordFileSuffix))
}

func (b *FileBackend) Read(ctx context.Context, kind string, id int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path(kind, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *FileBackend) Write(ctx context.Context, kind string, id int, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(b.Path(kind, id), payload, 0o600)
}

func (b *FileBackend) Delete(ctx context.Context, kind string, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(b.Path(kind, id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) List(ctx context.Context, kind string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.Dir(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := parseRecordFilename(kind, entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (b *FileBackend) MaxID(ctx context.Context, kind string) (int, error) {
	ids, err := b.List(ctx, kind)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[len(ids)-1], nil
}

func parseRecordFilename(kind, name string) (int, bool) {
	prefix := kind + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, recordFileSuffix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), recordFileSuffix))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// WriteFileAtomic 先写临时文件再 rename，避免读到半截文件
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
