package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) (*store.RecordStore, *store.FileBackend) {
	t.Helper()
	c, err := store.NewCipher(testKey, false)
	require.NoError(t, err)
	backend := store.NewFileBackend(t.TempDir())
	return store.NewRecordStore(backend, c), backend
}

func TestEntityRepositorySaveAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	repo := NewEntityRepository[models.Product](s, constants.KindProduct)

	product := &models.Product{Name: "Tee", Price: models.NewMoney(19.99)}
	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	createdAt := saved.CreatedAt
	time.Sleep(2 * time.Millisecond)
	saved.Name = "Tee v2"
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	loaded := repo.LoadOne(ctx, 1)
	require.NotNil(t, loaded)
	assert.Equal(t, "Tee v2", loaded.Name)
	assert.True(t, loaded.CreatedAt.Equal(createdAt))
	assert.True(t, loaded.UpdatedAt.After(createdAt))
	assert.Equal(t, "19.99", loaded.Price.String())
}

func TestEntityRepositoryLoadOneMissingReturnsNil(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	repo := NewEntityRepository[models.Product](s, constants.KindProduct)

	assert.Nil(t, repo.LoadOne(ctx, 999))
	assert.Nil(t, repo.LoadOne(ctx, 0))

	require.NoError(t, os.MkdirAll(backend.Dir(constants.KindProduct), 0o755))
	require.NoError(t, os.WriteFile(backend.Path(constants.KindProduct, 5), []byte(""), 0o600))
	assert.Nil(t, repo.LoadOne(ctx, 5))
}

func TestEntityRepositoryLoadAllSkipsCorruptRecords(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	repo := NewEntityRepository[models.Order](s, constants.KindOrder)

	for i := 0; i < 2; i++ {
		_, err := repo.Save(ctx, &models.Order{Status: constants.OrderStatusPending})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(backend.Path(constants.KindOrder, 3), []byte("not-encrypted"), 0o600))

	orders := repo.LoadAll(ctx)
	assert.Len(t, orders, 2)

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1))
	assert.Len(t, repo.LoadAll(ctx), 1)
}

func TestUserRepositoryEmailLookupAndRoleCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	repo := NewUserRepository(s)

	require.NoError(t, repo.Save(ctx, &models.User{Email: "Admin@Shop.io", Role: constants.RoleAdmin}))
	require.NoError(t, repo.Save(ctx, &models.User{Email: "u@shop.io", Role: constants.RoleUser}))

	user, err := repo.GetByEmail(ctx, " admin@shop.io ")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@shop.io")
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := repo.CountByRole(ctx, constants.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOrderRepositoryCreateAlwaysAssignsNewID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	repo := NewOrderRepository(s)

	first := &models.Order{ID: 7}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Order{}
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestAffiliateRepositoryPlainLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewAffiliateRepository(dir, nil)

	missing, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ledger := &models.Affiliate{ID: 3, UserID: 3, Email: "a@x.io", Status: constants.AffiliateStatusPending, CommissionRate: 0.1}
	require.NoError(t, repo.Save(ctx, ledger))

	raw, err := os.ReadFile(filepath.Join(dir, "affiliate-3.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"email\": \"a@x.io\"")

	loaded, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "a@x.io", loaded.Email)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "affiliate-9.json"), []byte("{broken"), 0o600))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAffiliateRepositoryEncryptedLedgerMigratesPlainFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, NewAffiliateRepository(dir, nil).Save(ctx, &models.Affiliate{ID: 4, UserID: 4, Email: "b@x.io"}))

	c, err := store.NewCipher(testKey, false)
	require.NoError(t, err)
	repo := NewAffiliateRepository(dir, c)

	legacy, err := repo.Get(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, legacy)

	require.NoError(t, repo.Save(ctx, legacy))
	_, err = os.Stat(filepath.Join(dir, "affiliate-4.json"))
	assert.True(t, os.IsNotExist(err))
	raw, err := os.ReadFile(filepath.Join(dir, "affiliate-4.enc.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "b@x.io")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b@x.io", all[0].Email)
}

func TestAffiliateRepositoryPayoutsAndOrphans(t *testing.T) {
	ctx := context.Background()
	repo := NewAffiliateRepository(t.TempDir(), nil)

	require.NoError(t, repo.SavePayout(ctx, &models.AffiliatePayout{ID: 20, AffiliateID: 1, Amount: models.NewMoney(5)}))
	require.NoError(t, repo.SavePayout(ctx, &models.AffiliatePayout{ID: 10, AffiliateID: 2, Amount: models.NewMoney(7)}))
	require.NoError(t, repo.SaveOrphan(ctx, &models.OrphanReferral{OrderID: 8, AffiliateID: 99, Reason: constants.OrphanReasonAffiliateMissing}))

	payouts, err := repo.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	assert.Equal(t, int64(10), payouts[0].ID)

	orphans, err := repo.ListOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, 99, orphans[0].AffiliateID)

	ledgers, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledgers)
}

// 旧系统结算后写下的账本：affiliateId 为字符串，金额为浮点数
const legacyPaidLedger = `{
  "id": 7,
  "userId": 7,
  "email": "legacy@x.io",
  "status": "active",
  "commissionRate": 0.1,
  "totalCommissions": 4,
  "pendingPayout": 0,
  "commissions": [
    {"orderId": 3, "amount": 4, "date": "2024-05-01T10:00:00.000Z", "status": "pending"}
  ],
  "referrals": [
    {"orderId": 3, "date": "2024-05-01T10:00:00.000Z", "amount": 40}
  ],
  "joinedDate": "2024-04-01T09:00:00.000Z",
  "lastPayoutDate": "2024-05-29T16:26:40.000Z",
  "application": {"date": "2024-04-01T09:00:00.000Z", "status": "pending", "notes": "Auto-generated from registration"},
  "payouts": [
    {"id": 1717000000000, "affiliateId": "7", "amount": 4, "date": "2024-05-29T16:26:40.000Z", "status": "paid"}
  ]
}`

func TestAffiliateRepositoryLoadsLegacyPaidLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "affiliate-7.json"), []byte(legacyPaidLedger), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "payouts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payouts", "payout-1717000000000.json"),
		[]byte(`{"id":1717000000000,"affiliateId":"7","amount":4,"date":"2024-05-29T16:26:40.000Z","status":"paid"}`), 0o600))
	repo := NewAffiliateRepository(dir, nil)

	ledger, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, ledger)
	require.Len(t, ledger.Payouts, 1)
	assert.Equal(t, 7, ledger.Payouts[0].AffiliateID)
	assert.Equal(t, "4.00", ledger.TotalCommissions.String())
	require.NotNil(t, ledger.LastPayoutDate)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	payouts, err := repo.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, 7, payouts[0].AffiliateID)

	require.NoError(t, repo.Save(ctx, ledger))
	raw, err := os.ReadFile(filepath.Join(dir, "affiliate-7.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"affiliateId": 7`)
}

func TestSettingRepositoryReadMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(filepath.Join(t.TempDir(), "affiliate-settings.json"))
	data, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, repo.Write(ctx, []byte(`{"defaultRate":0.2}`)))
	data, err = repo.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"defaultRate":0.2}`, string(data))
}
