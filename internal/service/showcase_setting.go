package service

import (
	"fmt"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
)

const (
	showcaseBandMin           = 1
	showcaseBandMax           = 1000000
	showcaseMaxEntriesMin     = 10
	showcaseMaxEntriesMax     = 1000
	showcaseRefreshMinutesMin = 1
	showcaseRefreshMinutesMax = 1440
	showcaseCacheSecondsMin   = 0
	showcaseCacheSecondsMax   = 3600
)

// ShowcaseSetting 展示位配置
type ShowcaseSetting struct {
	SilverMinScore         float64 `json:"silver_min_score"`
	GoldMinScore           float64 `json:"gold_min_score"`
	PlatinumMinScore       float64 `json:"platinum_min_score"`
	ViralMinScore          float64 `json:"viral_min_score"`
	MaxEntries             int     `json:"max_entries"`
	RefreshIntervalMinutes int     `json:"refresh_interval_minutes"`
	CacheTTLSeconds        int     `json:"cache_ttl_seconds"`
}

// ShowcaseDefaultSetting 默认展示位配置
func ShowcaseDefaultSetting() ShowcaseSetting {
	return ShowcaseSetting{
		SilverMinScore:         50,
		GoldMinScore:           200,
		PlatinumMinScore:       500,
		ViralMinScore:          1000,
		MaxEntries:             100,
		RefreshIntervalMinutes: 15,
		CacheTTLSeconds:        60,
	}
}

// NormalizeShowcaseSetting 归一化展示位配置
func NormalizeShowcaseSetting(setting ShowcaseSetting) ShowcaseSetting {
	defaults := ShowcaseDefaultSetting()

	setting.SilverMinScore = roundGrowthDecimal(setting.SilverMinScore)
	setting.GoldMinScore = roundGrowthDecimal(setting.GoldMinScore)
	setting.PlatinumMinScore = roundGrowthDecimal(setting.PlatinumMinScore)
	setting.ViralMinScore = roundGrowthDecimal(setting.ViralMinScore)
	if setting.SilverMinScore < showcaseBandMin || setting.SilverMinScore > showcaseBandMax {
		setting.SilverMinScore = defaults.SilverMinScore
	}
	if setting.GoldMinScore < showcaseBandMin || setting.GoldMinScore > showcaseBandMax {
		setting.GoldMinScore = defaults.GoldMinScore
	}
	if setting.PlatinumMinScore < showcaseBandMin || setting.PlatinumMinScore > showcaseBandMax {
		setting.PlatinumMinScore = defaults.PlatinumMinScore
	}
	if setting.ViralMinScore < showcaseBandMin || setting.ViralMinScore > showcaseBandMax {
		setting.ViralMinScore = defaults.ViralMinScore
	}
	// 档位阈值必须严格递增，乱序时整组回退默认
	if setting.GoldMinScore <= setting.SilverMinScore ||
		setting.PlatinumMinScore <= setting.GoldMinScore ||
		setting.ViralMinScore <= setting.PlatinumMinScore {
		setting.SilverMinScore = defaults.SilverMinScore
		setting.GoldMinScore = defaults.GoldMinScore
		setting.PlatinumMinScore = defaults.PlatinumMinScore
		setting.ViralMinScore = defaults.ViralMinScore
	}

	if setting.MaxEntries < showcaseMaxEntriesMin || setting.MaxEntries > showcaseMaxEntriesMax {
		setting.MaxEntries = defaults.MaxEntries
	}
	if setting.RefreshIntervalMinutes < showcaseRefreshMinutesMin || setting.RefreshIntervalMinutes > showcaseRefreshMinutesMax {
		setting.RefreshIntervalMinutes = defaults.RefreshIntervalMinutes
	}
	if setting.CacheTTLSeconds < showcaseCacheSecondsMin || setting.CacheTTLSeconds > showcaseCacheSecondsMax {
		setting.CacheTTLSeconds = defaults.CacheTTLSeconds
	}
	return setting
}

// ValidateShowcaseSetting 校验展示位配置
func ValidateShowcaseSetting(setting ShowcaseSetting) error {
	if setting.SilverMinScore < showcaseBandMin || setting.SilverMinScore > showcaseBandMax {
		return fmt.Errorf("%w: silver 档位分数阈值超出范围", ErrShowcaseConfigInvalid)
	}
	if setting.GoldMinScore <= setting.SilverMinScore {
		return fmt.Errorf("%w: gold 档位阈值必须大于 silver", ErrShowcaseConfigInvalid)
	}
	if setting.PlatinumMinScore <= setting.GoldMinScore {
		return fmt.Errorf("%w: platinum 档位阈值必须大于 gold", ErrShowcaseConfigInvalid)
	}
	if setting.ViralMinScore <= setting.PlatinumMinScore {
		return fmt.Errorf("%w: viral 晋升阈值必须大于 platinum", ErrShowcaseConfigInvalid)
	}
	if setting.MaxEntries < showcaseMaxEntriesMin || setting.MaxEntries > showcaseMaxEntriesMax {
		return fmt.Errorf("%w: 展示位条目上限必须在 10-1000 之间", ErrShowcaseConfigInvalid)
	}
	if setting.RefreshIntervalMinutes < showcaseRefreshMinutesMin || setting.RefreshIntervalMinutes > showcaseRefreshMinutesMax {
		return fmt.Errorf("%w: 展示位刷新间隔必须在 1-1440 分钟之间", ErrShowcaseConfigInvalid)
	}
	if setting.CacheTTLSeconds < showcaseCacheSecondsMin || setting.CacheTTLSeconds > showcaseCacheSecondsMax {
		return fmt.Errorf("%w: 展示位缓存时长必须在 0-3600 秒之间", ErrShowcaseConfigInvalid)
	}
	return nil
}

// ShowcaseSettingToMap 将展示位配置转换为 settings 存储结构
func ShowcaseSettingToMap(setting ShowcaseSetting) map[string]interface{} {
	normalized := NormalizeShowcaseSetting(setting)
	return map[string]interface{}{
		"silver_min_score":         normalized.SilverMinScore,
		"gold_min_score":           normalized.GoldMinScore,
		"platinum_min_score":       normalized.PlatinumMinScore,
		"viral_min_score":          normalized.ViralMinScore,
		"max_entries":              normalized.MaxEntries,
		"refresh_interval_minutes": normalized.RefreshIntervalMinutes,
		"cache_ttl_seconds":        normalized.CacheTTLSeconds,
	}
}

func showcaseSettingFromJSON(raw models.JSON, fallback ShowcaseSetting) ShowcaseSetting {
	result := fallback

	if value, ok := raw["silver_min_score"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.SilverMinScore = parsed
		}
	}
	if value, ok := raw["gold_min_score"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.GoldMinScore = parsed
		}
	}
	if value, ok := raw["platinum_min_score"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.PlatinumMinScore = parsed
		}
	}
	if value, ok := raw["viral_min_score"]; ok {
		if parsed, err := parseSettingFloat(value); err == nil {
			result.ViralMinScore = parsed
		}
	}
	if value, ok := raw["max_entries"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.MaxEntries = parsed
		}
	}
	if value, ok := raw["refresh_interval_minutes"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.RefreshIntervalMinutes = parsed
		}
	}
	if value, ok := raw["cache_ttl_seconds"]; ok {
		if parsed, err := parseSettingInt(value); err == nil {
			result.CacheTTLSeconds = parsed
		}
	}

	return NormalizeShowcaseSetting(result)
}

func normalizeShowcaseSettingMap(value map[string]interface{}) models.JSON {
	setting := showcaseSettingFromJSON(models.JSON(value), ShowcaseDefaultSetting())
	return models.JSON(ShowcaseSettingToMap(setting))
}

// PromotesToViral 判断病毒分是否达到 viral 晋升阈值
func (s ShowcaseSetting) PromotesToViral(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(decimal.NewFromFloat(s.ViralMinScore))
}

// BandForEntry 按状态与病毒分解析展示位档位，viral 状态固定归入 viral 档
func (s ShowcaseSetting) BandForEntry(status string, score decimal.Decimal) string {
	if status == constants.ArtifactStatusViral {
		return constants.BoostTierViral
	}
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromFloat(s.PlatinumMinScore)):
		return constants.BoostTierPlatinum
	case score.GreaterThanOrEqual(decimal.NewFromFloat(s.GoldMinScore)):
		return constants.BoostTierGold
	case score.GreaterThanOrEqual(decimal.NewFromFloat(s.SilverMinScore)):
		return constants.BoostTierSilver
	default:
		return constants.BoostTierBronze
	}
}

// GetShowcaseSetting 获取展示位设置（优先 settings，空时回退默认）
func (s *SettingService) GetShowcaseSetting() (ShowcaseSetting, error) {
	fallback := ShowcaseDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyShowcaseConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return showcaseSettingFromJSON(value, fallback), nil
}

// UpdateShowcaseSetting 更新展示位设置
func (s *SettingService) UpdateShowcaseSetting(setting ShowcaseSetting) (ShowcaseSetting, error) {
	normalized := NormalizeShowcaseSetting(setting)
	if err := ValidateShowcaseSetting(normalized); err != nil {
		return ShowcaseDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyShowcaseConfig, ShowcaseSettingToMap(normalized)); err != nil {
		return ShowcaseDefaultSetting(), err
	}
	return normalized, nil
}
