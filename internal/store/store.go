package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrEmptyRecord 记录内容为空
var ErrEmptyRecord = errors.New("record is empty")

// RecordStore 加密记录存储，按类型分配递增 id
type RecordStore struct {
	backend Backend
	cipher  *Cipher

	mu   sync.Mutex
	seqs map[string]*sequence
}

type sequence struct {
	seeded bool
	last   int
}

// NewRecordStore 创建记录存储
func NewRecordStore(backend Backend, c *Cipher) *RecordStore {
	return &RecordStore{
		backend: backend,
		cipher:  c,
		seqs:    make(map[string]*sequence),
	}
}

// Cipher 返回当前加解密器
func (s *RecordStore) Cipher() *Cipher {
	return s.cipher
}

// NextID 分配下一个 id；计数器首次使用时从后端最大 id 初始化
func (s *RecordStore) NextID(ctx context.Context, kind string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, err := s.sequenceLocked(ctx, kind)
	if err != nil {
		return 0, err
	}
	seq.last++
	return seq.last, nil
}

// observe 显式写入更大的 id 时推进计数器
func (s *RecordStore) observe(kind string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq, ok := s.seqs[kind]; ok && seq.seeded && id > seq.last {
		seq.last = id
	}
}

func (s *RecordStore) sequenceLocked(ctx context.Context, kind string) (*sequence, error) {
	seq, ok := s.seqs[kind]
	if !ok {
		seq = &sequence{}
		s.seqs[kind] = seq
	}
	if !seq.seeded {
		maxID, err := s.backend.MaxID(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("seed %s sequence: %w", kind, err)
		}
		seq.last = maxID
		seq.seeded = true
	}
	return seq, nil
}

// Put 加密并写入记录
func (s *RecordStore) Put(ctx context.Context, kind string, id int, plaintext []byte) error {
	if id <= 0 {
		return fmt.Errorf("invalid %s id %d", kind, id)
	}
	blob, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, kind, id, []byte(blob)); err != nil {
		return fmt.Errorf("write %s %d: %w", kind, id, err)
	}
	s.observe(kind, id)
	return nil
}

// Get 读取并解密记录
func (s *RecordStore) Get(ctx context.Context, kind string, id int) ([]byte, error) {
	raw, err := s.backend.Read(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, ErrEmptyRecord
	}
	return s.cipher.Decrypt(string(raw))
}

// Delete 删除记录，不存在时无操作
func (s *RecordStore) Delete(ctx context.Context, kind string, id int) error {
	return s.backend.Delete(ctx, kind, id)
}

// IDs 列出某类记录的全部 id
func (s *RecordStore) IDs(ctx context.Context, kind string) ([]int, error) {
	return s.backend.List(ctx, kind)
}
