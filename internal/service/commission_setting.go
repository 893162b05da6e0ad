package service

import (
	"fmt"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
)

const (
	commissionMonthsMin        = 1
	commissionMonthsMax        = 240
	commissionRateMin          = 0.01
	commissionRateMax          = 0.95
	commissionConfirmDaysMin   = 0
	commissionConfirmDaysMax   = 365
	commissionExpiryDaysMin    = 1
	commissionExpiryDaysMax    = 365
	defaultCommissionIntroRate = 0.20
	defaultCommissionMidRate   = 0.25
	defaultCommissionLoyalRate = 0.40
)

// CommissionSetting 佣金配置
type CommissionSetting struct {
	IntroMonths        int     `json:"intro_months"`
	LoyalMonths        int     `json:"loyal_months"`
	IntroRate          float64 `json:"intro_rate"`
	MidRate            float64 `json:"mid_rate"`
	LoyalRate          float64 `json:"loyal_rate"`
	ConfirmDays        int     `json:"confirm_days"`
	ReferralExpiryDays int     `json:"referral_expiry_days"`
}

// CommissionDefaultSetting 默认佣金配置
func CommissionDefaultSetting() CommissionSetting {
	return CommissionSetting{
		IntroMonths:        12,
		LoyalMonths:        48,
		IntroRate:          defaultCommissionIntroRate,
		MidRate:            defaultCommissionMidRate,
		LoyalRate:          defaultCommissionLoyalRate,
		ConfirmDays:        14,
		ReferralExpiryDays: 30,
	}
}

// NormalizeCommissionSetting 归一化佣金配置
func NormalizeCommissionSetting(setting CommissionSetting) CommissionSetting {
	defaults := CommissionDefaultSetting()

	if setting.IntroMonths < commissionMonthsMin || setting.IntroMonths > commissionMonthsMax {
		setting.IntroMonths = defaults.IntroMonths
	}
	if setting.LoyalMonths < commissionMonthsMin || setting.LoyalMonths > commissionMonthsMax {
		setting.LoyalMonths = defaults.LoyalMonths
	}
	if setting.LoyalMonths <= setting.IntroMonths {
		setting.IntroMonths = defaults.IntroMonths
		setting.LoyalMonths = defaults.LoyalMonths
	}

	setting.IntroRate = normalizeCommissionRate(setting.IntroRate, defaults.IntroRate)
	setting.MidRate = normalizeCommissionRate(setting.MidRate, defaults.MidRate)
	setting.LoyalRate = normalizeCommissionRate(setting.LoyalRate, defaults.LoyalRate)

	if setting.ConfirmDays < commissionConfirmDaysMin || setting.ConfirmDays > commissionConfirmDaysMax {
		setting.ConfirmDays = defaults.ConfirmDays
	}
	if setting.ReferralExpiryDays < commissionExpiryDaysMin || setting.ReferralExpiryDays > commissionExpiryDaysMax {
		setting.ReferralExpiryDays = defaults.ReferralExpiryDays
	}
	return setting
}

// ValidateCommissionSetting 校验佣金配置
func ValidateCommissionSetting(setting CommissionSetting) error {
	if setting.IntroMonths < commissionMonthsMin || setting.IntroMonths > commissionMonthsMax {
		return fmt.Errorf("%w: 入门档月数必须在 1-240 之间", ErrCommissionConfigInvalid)
	}
	if setting.LoyalMonths <= setting.IntroMonths || setting.LoyalMonths > commissionMonthsMax {
		return fmt.Errorf("%w: 忠诚档月数必须大于入门档且不超过 240", ErrCommissionConfigInvalid)
	}
	for _, rate := range []float64{setting.IntroRate, setting.MidRate, setting.LoyalRate} {
		if rate < commissionRateMin || rate > commissionRateMax {
			return fmt.Errorf("%w: 佣金费率必须在 0.01-0.95 之间", ErrCommissionConfigInvalid)
		}
	}
	// 费率阶梯只升不降，避免长期推荐反而拿更低费率
	if setting.MidRate < setting.IntroRate || setting.LoyalRate < setting.MidRate {
		return fmt.Errorf("%w: 佣金费率必须随关系时长递增", ErrCommissionConfigInvalid)
	}
	if setting.ConfirmDays < commissionConfirmDaysMin || setting.ConfirmDays > commissionConfirmDaysMax {
		return fmt.Errorf("%w: 佣金确认天数必须在 0-365 之间", ErrCommissionConfigInvalid)
	}
	if setting.ReferralExpiryDays < commissionExpiryDaysMin || setting.ReferralExpiryDays > commissionExpiryDaysMax {
		return fmt.Errorf("%w: 推荐邀请过期天数必须在 1-365 之间", ErrCommissionConfigInvalid)
	}
	return nil
}

// CommissionSettingToMap 将佣金配置转换为 settings 存储结构
func CommissionSettingToMap(setting CommissionSetting) map[string]interface{} {
	normalized := NormalizeCommissionSetting(setting)
	return map[string]interface{}{
		"intro_months":         normalized.IntroMonths,
		"loyal_months":         normalized.LoyalMonths,
		"intro_rate":           normalized.IntroRate,
		"mid_rate":             normalized.MidRate,
		"loyal_rate":           normalized.LoyalRate,
		"confirm_days":         normalized.ConfirmDays,
		"referral_expiry_days": normalized.ReferralExpiryDays,
	}
}

func commissionSettingFromJSON(raw models.JSON, fallback CommissionSetting) CommissionSetting {
	result := fallback

	if value, ok := raw["intro_months"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.IntroMonths = parsed
		}
	}
	if value, ok := raw["loyal_months"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.LoyalMonths = parsed
		}
	}
	if value, ok := raw["intro_rate"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.IntroRate = parsed
		}
	}
	if value, ok := raw["mid_rate"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.MidRate = parsed
		}
	}
	if value, ok := raw["loyal_rate"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.LoyalRate = parsed
		}
	}
	if value, ok := raw["confirm_days"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.ConfirmDays = parsed
		}
	}
	if value, ok := raw["referral_expiry_days"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.ReferralExpiryDays = parsed
		}
	}

	return NormalizeCommissionSetting(result)
}

func normalizeCommissionSettingMap(value map[string]interface{}) models.JSON {
	setting := commissionSettingFromJSON(models.JSON(value), CommissionDefaultSetting())
	return models.JSON(CommissionSettingToMap(setting))
}

// RateForMonths 按推荐关系月数返回佣金费率（阶梯下界含等于）
func (s CommissionSetting) RateForMonths(months int) decimal.Decimal {
	switch {
	case months <= s.IntroMonths:
		return decimal.NewFromFloat(s.IntroRate)
	case months <= s.LoyalMonths:
		return decimal.NewFromFloat(s.MidRate)
	default:
		return decimal.NewFromFloat(s.LoyalRate)
	}
}

// GetCommissionSetting 获取佣金设置（优先 settings，空时回退默认）
func (s *SettingService) GetCommissionSetting() (CommissionSetting, error) {
	fallback := CommissionDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return commissionSettingFromJSON(value, fallback), nil
}

// UpdateCommissionSetting 更新佣金设置
func (s *SettingService) UpdateCommissionSetting(setting CommissionSetting) (CommissionSetting, error) {
	normalized := NormalizeCommissionSetting(setting)
	if err := ValidateCommissionSetting(normalized); err != nil {
		return CommissionDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyCommissionConfig, CommissionSettingToMap(normalized)); err != nil {
		return CommissionDefaultSetting(), err
	}
	return normalized, nil
}

func normalizeCommissionRate(rate, fallback float64) float64 {
	rate = roundGrowthDecimal(rate)
	if rate < commissionRateMin || rate > commissionRateMax {
		return fallback
	}
	return rate
}
