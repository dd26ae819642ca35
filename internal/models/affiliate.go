package models

import (
	"encoding/json"
	"time"

	"github.com/storefront/internal/constants"

	"github.com/shopspring/decimal"
)

// Affiliate 推广员账本，id 与 userId 相同
type Affiliate struct {
	ID               int                   `json:"id"`
	UserID           int                   `json:"userId"`
	Email            string                `json:"email"`
	Status           string                `json:"status"`
	CommissionRate   float64               `json:"commissionRate"`
	TotalCommissions Money                 `json:"totalCommissions"`
	PendingPayout    Money                 `json:"pendingPayout"`
	Commissions      []AffiliateCommission `json:"commissions"`
	Referrals        []AffiliateReferral   `json:"referrals"`
	Payouts          []AffiliatePayout     `json:"payouts"`
	JoinedDate       time.Time             `json:"joinedDate"`
	LastPayoutDate   *time.Time            `json:"lastPayoutDate"`
	Application      *AffiliateApplication `json:"application,omitempty"`
}

// AffiliateCommission 单笔佣金
type AffiliateCommission struct {
	OrderID int       `json:"orderId"`
	Amount  Money     `json:"amount"`
	Date    time.Time `json:"date"`
	Status  string    `json:"status"`
}

// AffiliateReferral 推荐订单记录
type AffiliateReferral struct {
	OrderID int       `json:"orderId"`
	Date    time.Time `json:"date"`
	Amount  Money     `json:"amount"`
}

// AffiliatePayout 结算记录
type AffiliatePayout struct {
	ID          int64     `json:"id"`
	AffiliateID int       `json:"affiliateId"`
	Amount      Money     `json:"amount"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

// UnmarshalJSON 兼容 affiliateId 以字符串保存的旧结算记录
func (p *AffiliatePayout) UnmarshalJSON(b []byte) error {
	type payoutFields AffiliatePayout
	aux := struct {
		*payoutFields
		AffiliateID FlexInt `json:"affiliateId"`
	}{payoutFields: (*payoutFields)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.AffiliateID = int(aux.AffiliateID)
	return nil
}

// AffiliateApplication 注册时附带的申请信息
type AffiliateApplication struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Notes  string    `json:"notes"`
}

// OrphanReferral 无法归属到有效推广员的推荐
type OrphanReferral struct {
	OrderID     int       `json:"orderId"`
	AffiliateID int       `json:"affiliateId"`
	Amount      Money     `json:"amount"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
}

// PendingCommissionTotal 状态为 pending 的佣金合计
func (a *Affiliate) PendingCommissionTotal() Money {
	sum := decimal.Zero
	for _, c := range a.Commissions {
		if c.Status == constants.CommissionStatusPending {
			sum = sum.Add(c.Amount.Decimal)
		}
	}
	return NewMoneyFromDecimal(sum)
}
