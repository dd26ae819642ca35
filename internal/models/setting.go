package models

// AffiliateSettings 全局推广设置
type AffiliateSettings struct {
	DefaultRate    float64 `json:"defaultRate"`
	MinimumPayout  Money   `json:"minimumPayout"`
	PayoutSchedule string  `json:"payoutSchedule"`
	CookieDuration int     `json:"cookieDuration"`
	Terms          string  `json:"terms"`
}

// CommissionData 推广员视角的佣金设置，rate 为个人比例
type CommissionData struct {
	Rate           float64 `json:"rate"`
	MinimumPayout  Money   `json:"minimumPayout"`
	PayoutSchedule string  `json:"payoutSchedule"`
	CookieDuration int     `json:"cookieDuration"`
	Terms          string  `json:"terms"`
}
