package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) (*RecordStore, *FileBackend) {
	t.Helper()
	c, err := NewCipher(testKey, false)
	require.NoError(t, err)
	backend := NewFileBackend(t.TempDir())
	return NewRecordStore(backend, c), backend
}

func TestRecordStoreFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, backend := newFileStore(t)

	id, err := s.NextID(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.NoError(t, s.Put(ctx, "user", id, []byte(`{"id":1}`)))

	_, err = os.Stat(filepath.Join(backend.Root(), "users", "user-0001.enc.json"))
	require.NoError(t, err)

	got, err := s.Get(ctx, "user", id)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got))

	ids, err := s.IDs(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	require.NoError(t, s.Delete(ctx, "user", id))
	require.NoError(t, s.Delete(ctx, "user", id))
	_, err = s.Get(ctx, "user", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordStoreSeedsSequenceFromExistingFiles(t *testing.T) {
	ctx := context.Background()
	s, backend := newFileStore(t)
	dir := backend.Dir("order")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"order-0003.enc.json", "order-0017.enc.json", "notes.txt", "order-x.enc.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	id, err := s.NextID(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, 18, id)

	require.NoError(t, s.Put(ctx, "order", 40, []byte("{}")))
	id, err = s.NextID(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, 41, id)
}

func TestRecordStoreConcurrentIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	const workers = 50
	ids := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NextID(ctx, "product")
			if err != nil {
				t.Errorf("next id failed: %v", err)
				return
			}
			if err := s.Put(ctx, "product", id, []byte(fmt.Sprintf(`{"id":%d}`, id))); err != nil {
				t.Errorf("put failed: %v", err)
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	listed, err := s.IDs(ctx, "product")
	require.NoError(t, err)
	assert.Len(t, listed, workers)
}

func TestRecordStoreEmptyAndCorruptRecords(t *testing.T) {
	ctx := context.Background()
	s, backend := newFileStore(t)
	require.NoError(t, os.MkdirAll(backend.Dir("user"), 0o755))
	require.NoError(t, os.WriteFile(backend.Path("user", 1), []byte("  \n"), 0o600))
	require.NoError(t, os.WriteFile(backend.Path("user", 2), []byte("garbage"), 0o600))

	_, err := s.Get(ctx, "user", 1)
	assert.ErrorIs(t, err, ErrEmptyRecord)
	_, err = s.Get(ctx, "user", 2)
	assert.ErrorIs(t, err, ErrDecryption)
	_, err = s.Get(ctx, "user", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "doc.json")
	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := models.OpenDB("sqlite", "file:store_sql_backend?mode=memory&cache=shared", models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	backend, err := NewSQLBackend(db)
	require.NoError(t, err)

	c, err := NewCipher(testKey, true)
	require.NoError(t, err)
	s := NewRecordStore(backend, c)

	for i := 0; i < 3; i++ {
		id, err := s.NextID(ctx, "order")
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, "order", id, []byte(fmt.Sprintf(`{"n":%d}`, i))))
	}
	require.NoError(t, s.Put(ctx, "order", 2, []byte(`{"n":"updated"}`)))

	ids, err := s.IDs(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	got, err := s.Get(ctx, "order", 2)
	require.NoError(t, err)
	assert.Equal(t, `{"n":"updated"}`, string(got))

	maxID, err := backend.MaxID(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, 3, maxID)

	maxID, err = backend.MaxID(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 0, maxID)

	require.NoError(t, s.Delete(ctx, "order", 1))
	_, err = s.Get(ctx, "order", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
