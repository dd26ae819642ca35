package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单记录，创建后不再修改
type Order struct {
	ID              int          `json:"id"`
	Items           []OrderItem  `json:"items"`
	AffiliateID     *int         `json:"affiliateId"`
	Address         OrderAddress `json:"address"`
	Email           string       `json:"email,omitempty"`
	PaymentMethod   string       `json:"paymentMethod"`
	PaymentIntentID string       `json:"paymentIntentId,omitempty"`
	Totals          OrderTotals  `json:"totals"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// OrderItem 订单商品行
type OrderItem struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
}

// OrderAddress 收货地址
type OrderAddress struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// UnmarshalJSON 结账页以 street 提交地址首行，line1 缺失时取 street
func (a *OrderAddress) UnmarshalJSON(b []byte) error {
	type addressFields OrderAddress
	aux := struct {
		*addressFields
		Street string `json:"street"`
	}{addressFields: (*addressFields)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if a.Line1 == "" {
		a.Line1 = aux.Street
	}
	return nil
}

// OrderTotals 订单金额汇总
type OrderTotals struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

func (o *Order) GetID() int   { return o.ID }
func (o *Order) SetID(id int) { o.ID = id }

// Touch 更新时间戳
func (o *Order) Touch(now time.Time) {
	o.UpdatedAt = now
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
}

// Subtotal 商品小计 Σ price × quantity，不含运费与税
func (o *Order) Subtotal() Money {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return NewMoneyFromDecimal(sum)
}
