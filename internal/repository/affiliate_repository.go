package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/store"
)

const (
	affiliateFilePrefix = "affiliate-"
	plainSuffix         = ".json"
	encryptedSuffix     = ".enc.json"
)

// AffiliateRepository 推广账本数据访问接口
type AffiliateRepository interface {
	Get(ctx context.Context, id int) (*models.Affiliate, error)
	Save(ctx context.Context, affiliate *models.Affiliate) error
	List(ctx context.Context) ([]models.Affiliate, error)
	SavePayout(ctx context.Context, payout *models.AffiliatePayout) error
	ListPayouts(ctx context.Context) ([]models.AffiliatePayout, error)
	SaveOrphan(ctx context.Context, orphan *models.OrphanReferral) error
	ListOrphans(ctx context.Context) ([]models.OrphanReferral, error)
}

// FileAffiliateRepository 每个推广员一个 JSON 文件；cipher 非空时加密存储
type FileAffiliateRepository struct {
	dir    string
	cipher *store.Cipher
}

// NewAffiliateRepository 创建推广账本仓库
func NewAffiliateRepository(dir string, cipher *store.Cipher) *FileAffiliateRepository {
	return &FileAffiliateRepository{dir: dir, cipher: cipher}
}

// Dir 账本目录
func (r *FileAffiliateRepository) Dir() string {
	return r.dir
}

// Get 读取账本；不存在时返回 nil, nil
func (r *FileAffiliateRepository) Get(ctx context.Context, id int) (*models.Affiliate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, nil
	}
	data, encrypted, err := r.readLedger(id)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.decode(data, encrypted)
}

// Save 原子写入账本
func (r *FileAffiliateRepository) Save(ctx context.Context, affiliate *models.Affiliate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if affiliate == nil || affiliate.ID <= 0 {
		return fmt.Errorf("invalid affiliate id")
	}
	data, err := json.MarshalIndent(affiliate, "", "  ")
	if err != nil {
		return err
	}
	if r.cipher == nil {
		return store.WriteFileAtomic(r.ledgerPath(affiliate.ID, false), data, 0o600)
	}
	blob, err := r.cipher.Encrypt(data)
	if err != nil {
		return err
	}
	if err := store.WriteFileAtomic(r.ledgerPath(affiliate.ID, true), []byte(blob), 0o600); err != nil {
		return err
	}
	// 已迁移为密文后移除旧明文文件
	if err := os.Remove(r.ledgerPath(affiliate.ID, false)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnw("affiliate_plain_ledger_remove_failed", "affiliate_id", affiliate.ID, "error", err)
	}
	return nil
}

// List 列出全部账本，损坏文件记录日志并跳过
func (r *FileAffiliateRepository) List(ctx context.Context) ([]models.Affiliate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Affiliate{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make(map[int]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := parseLedgerFilename(entry.Name()); ok {
			ids[id] = struct{}{}
		}
	}
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)

	affiliates := make([]models.Affiliate, 0, len(sorted))
	for _, id := range sorted {
		affiliate, err := r.Get(ctx, id)
		if err != nil {
			logger.Warnw("affiliate_ledger_load_failed", "affiliate_id", id, "error", err)
			continue
		}
		if affiliate != nil {
			affiliates = append(affiliates, *affiliate)
		}
	}
	return affiliates, nil
}

// SavePayout 写入 payouts/payout-{id}.json
func (r *FileAffiliateRepository) SavePayout(ctx context.Context, payout *models.AffiliatePayout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(r.dir, "payouts", fmt.Sprintf("payout-%d.json", payout.ID))
	return writeJSONAtomic(path, payout)
}

// ListPayouts 列出全部结算记录（按 id 升序）
func (r *FileAffiliateRepository) ListPayouts(ctx context.Context) ([]models.AffiliatePayout, error) {
	payouts := []models.AffiliatePayout{}
	err := readJSONDir(ctx, filepath.Join(r.dir, "payouts"), "payout-", func(data []byte) error {
		var payout models.AffiliatePayout
		if err := json.Unmarshal(data, &payout); err != nil {
			return err
		}
		payouts = append(payouts, payout)
		return nil
	})
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].ID < payouts[j].ID })
	return payouts, err
}

// SaveOrphan 写入 orphans/orphan-{orderId}.json
func (r *FileAffiliateRepository) SaveOrphan(ctx context.Context, orphan *models.OrphanReferral) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(r.dir, "orphans", fmt.Sprintf("orphan-%d.json", orphan.OrderID))
	return writeJSONAtomic(path, orphan)
}

// ListOrphans 列出全部无归属推荐（按订单 id 升序）
func (r *FileAffiliateRepository) ListOrphans(ctx context.Context) ([]models.OrphanReferral, error) {
	orphans := []models.OrphanReferral{}
	err := readJSONDir(ctx, filepath.Join(r.dir, "orphans"), "orphan-", func(data []byte) error {
		var orphan models.OrphanReferral
		if err := json.Unmarshal(data, &orphan); err != nil {
			return err
		}
		orphans = append(orphans, orphan)
		return nil
	})
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].OrderID < orphans[j].OrderID })
	return orphans, err
}

func (r *FileAffiliateRepository) ledgerPath(id int, encrypted bool) string {
	suffix := plainSuffix
	if encrypted {
		suffix = encryptedSuffix
	}
	return filepath.Join(r.dir, affiliateFilePrefix+strconv.Itoa(id)+suffix)
}

// readLedger 加密模式优先读密文，兼容尚未迁移的明文文件
func (r *FileAffiliateRepository) readLedger(id int) ([]byte, bool, error) {
	if r.cipher != nil {
		data, err := os.ReadFile(r.ledgerPath(id, true))
		if err == nil {
			return data, true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, true, err
		}
	}
	data, err := os.ReadFile(r.ledgerPath(id, false))
	return data, false, err
}

func (r *FileAffiliateRepository) decode(data []byte, encrypted bool) (*models.Affiliate, error) {
	if encrypted {
		plain, err := r.cipher.Decrypt(string(data))
		if err != nil {
			return nil, err
		}
		data = plain
	}
	var affiliate models.Affiliate
	if err := json.Unmarshal(data, &affiliate); err != nil {
		return nil, fmt.Errorf("parse affiliate ledger: %w", err)
	}
	if affiliate.ID == 0 {
		affiliate.ID = affiliate.UserID
	}
	return &affiliate, nil
}

func parseLedgerFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, affiliateFilePrefix) || !strings.HasSuffix(name, plainSuffix) {
		return 0, false
	}
	raw := strings.TrimPrefix(name, affiliateFilePrefix)
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, plainSuffix), ".enc")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSONAtomic(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return store.WriteFileAtomic(path, data, 0o600)
}

func readJSONDir(ctx context.Context, dir, prefix string, fn func([]byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, plainSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warnw("affiliate_file_read_failed", "file", name, "error", err)
			continue
		}
		if err := fn(data); err != nil {
			logger.Warnw("affiliate_file_parse_failed", "file", name, "error", err)
		}
	}
	return nil
}
