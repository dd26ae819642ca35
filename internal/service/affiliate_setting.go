package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/models"
	"github.com/storefront/internal/repository"
)

const (
	defaultCommissionRate = 0.10
	defaultMinimumPayout  = 50
	defaultCookieDuration = 30
	defaultAffiliateTerms = "Standard affiliate terms apply"
	maxCookieDurationDays = 3650
	maxTermsRunes         = 5000
)

// AffiliateDefaultSetting 默认推广设置
func AffiliateDefaultSetting() models.AffiliateSettings {
	return models.AffiliateSettings{
		DefaultRate:    defaultCommissionRate,
		MinimumPayout:  models.NewMoney(defaultMinimumPayout),
		PayoutSchedule: constants.PayoutScheduleMonthly,
		CookieDuration: defaultCookieDuration,
		Terms:          defaultAffiliateTerms,
	}
}

// AffiliateSettingInput 设置更新载荷，未提供的字段保持原值
type AffiliateSettingInput struct {
	DefaultRate    NumberField `json:"defaultRate"`
	MinimumPayout  NumberField `json:"minimumPayout"`
	PayoutSchedule *string     `json:"payoutSchedule"`
	CookieDuration NumberField `json:"cookieDuration"`
	Terms          *string     `json:"terms"`
}

// AffiliateSettingService 推广设置读写，读取时与默认值合并
type AffiliateSettingService struct {
	repo repository.SettingRepository
	mu   sync.Mutex
}

// NewAffiliateSettingService 创建推广设置服务
func NewAffiliateSettingService(repo repository.SettingRepository) *AffiliateSettingService {
	return &AffiliateSettingService{repo: repo}
}

// Get 读取设置；文件缺失或损坏时回退默认值
func (s *AffiliateSettingService) Get(ctx context.Context) (models.AffiliateSettings, error) {
	setting := AffiliateDefaultSetting()
	data, err := s.repo.Read(ctx)
	if err != nil {
		return setting, err
	}
	if len(data) == 0 {
		return setting, nil
	}
	if err := json.Unmarshal(data, &setting); err != nil {
		logger.Warnw("affiliate_settings_parse_failed", "error", err)
		return AffiliateDefaultSetting(), nil
	}
	return NormalizeAffiliateSetting(setting), nil
}

// Update 合并并校验后写入
func (s *AffiliateSettingService) Update(ctx context.Context, input AffiliateSettingInput) (models.AffiliateSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, err := s.Get(ctx)
	if err != nil {
		return setting, err
	}
	if input.DefaultRate.Valid {
		setting.DefaultRate = input.DefaultRate.Float64()
	}
	if input.MinimumPayout.Valid {
		setting.MinimumPayout = input.MinimumPayout.Money()
	}
	if input.PayoutSchedule != nil {
		setting.PayoutSchedule = strings.ToLower(strings.TrimSpace(*input.PayoutSchedule))
	}
	if input.CookieDuration.Valid {
		setting.CookieDuration = int(input.CookieDuration.Value.IntPart())
	}
	if input.Terms != nil {
		setting.Terms = strings.TrimSpace(*input.Terms)
	}
	if err := ValidateAffiliateSetting(setting); err != nil {
		return setting, err
	}

	data, err := json.MarshalIndent(setting, "", "  ")
	if err != nil {
		return setting, err
	}
	if err := s.repo.Write(ctx, data); err != nil {
		return setting, err
	}
	return setting, nil
}

// NormalizeAffiliateSetting 修正读取到的非法字段
func NormalizeAffiliateSetting(setting models.AffiliateSettings) models.AffiliateSettings {
	defaults := AffiliateDefaultSetting()
	if err := validateRate(setting.DefaultRate); err != nil {
		setting.DefaultRate = defaults.DefaultRate
	}
	if setting.MinimumPayout.IsNegative() {
		setting.MinimumPayout = defaults.MinimumPayout
	}
	if !isPayoutSchedule(setting.PayoutSchedule) {
		setting.PayoutSchedule = defaults.PayoutSchedule
	}
	if setting.CookieDuration < 0 {
		setting.CookieDuration = defaults.CookieDuration
	}
	return setting
}

// ValidateAffiliateSetting 校验推广设置
func ValidateAffiliateSetting(setting models.AffiliateSettings) error {
	if err := validateRate(setting.DefaultRate); err != nil {
		return fmt.Errorf("%w: defaultRate %w", ErrAffiliateSettingsInvalid, err)
	}
	if setting.MinimumPayout.IsNegative() {
		return fmt.Errorf("%w: minimumPayout 不能小于 0", ErrAffiliateSettingsInvalid)
	}
	if !isPayoutSchedule(setting.PayoutSchedule) {
		return fmt.Errorf("%w: payoutSchedule 必须为 manual/weekly/monthly", ErrAffiliateSettingsInvalid)
	}
	if setting.CookieDuration < 0 || setting.CookieDuration > maxCookieDurationDays {
		return fmt.Errorf("%w: cookieDuration 必须在 0-%d 之间", ErrAffiliateSettingsInvalid, maxCookieDurationDays)
	}
	if len([]rune(setting.Terms)) > maxTermsRunes {
		return fmt.Errorf("%w: terms 过长", ErrAffiliateSettingsInvalid)
	}
	return nil
}

func isPayoutSchedule(schedule string) bool {
	switch schedule {
	case constants.PayoutScheduleManual, constants.PayoutScheduleWeekly, constants.PayoutScheduleMonthly:
		return true
	default:
		return false
	}
}

func validateRate(rate float64) error {
	if rate <= 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
