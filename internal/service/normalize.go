package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront/internal/models"

	"github.com/shopspring/decimal"
)

// NumberField 接受数字或数字字符串的输入字段；null 与空串视为未提供
type NumberField struct {
	Value decimal.Decimal
	Valid bool
}

// UnmarshalJSON 解析数字或字符串
func (n *NumberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	n.Valid = false
	n.Value = decimal.Zero
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid number %q", ErrInvalidInput, raw)
	}
	n.Value = d
	n.Valid = true
	return nil
}

// MarshalJSON 未提供时输出 null
func (n NumberField) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}

// Number 构造已赋值字段
func Number(v float64) NumberField {
	return NumberField{Value: decimal.NewFromFloat(v), Valid: true}
}

// Present 已提供且非零
func (n NumberField) Present() bool {
	return n.Valid && !n.Value.IsZero()
}

// Float64 转为浮点数
func (n NumberField) Float64() float64 {
	f, _ := n.Value.Float64()
	return f
}

// Money 转为金额
func (n NumberField) Money() models.Money {
	return models.NewMoneyFromDecimal(n.Value)
}

// MoneyPtr 已提供且非零时返回金额，否则为 nil
func (n NumberField) MoneyPtr() *models.Money {
	if !n.Present() {
		return nil
	}
	m := n.Money()
	return &m
}

func cloneStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
