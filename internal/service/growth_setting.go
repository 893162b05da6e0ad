package service

import (
	"fmt"
	"math"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
)

const (
	growthFeatureThresholdMin = 1
	growthFeatureThresholdMax = 1000
	growthWeightMin           = 0
	growthWeightMax           = 100
	growthTierMultiplierMin   = 0.1
	growthTierMultiplierMax   = 10
	growthDefaultBoostMin     = 0.1
	growthDefaultBoostMax     = 100
	growthDecayFactorMin      = 0.1
	growthDecayFactorMax      = 10
	growthDecayAgeDaysMax     = 3650
	growthDecayBracketMax     = 10
	growthRescoreBatchSizeMin = 10
	growthRescoreBatchSizeMax = 5000
	growthRescoreIntervalMin  = 5
	growthRescoreIntervalMax  = 1440
	growthFallbackShareWeight = 2.0
	growthFallbackTierFactor  = 1.0

	growthDefaultDecayStaleFactor = 0.6
)

// GrowthEngagementWeights 互动计分权重
type GrowthEngagementWeights struct {
	Pageview float64 `json:"pageview"`
	Like     float64 `json:"like"`
	Comment  float64 `json:"comment"`
}

// GrowthDecayBracket 时间衰减档位：站龄不超过 max_age_days 天（含）时应用 factor
type GrowthDecayBracket struct {
	MaxAgeDays int     `json:"max_age_days"`
	Factor     float64 `json:"factor"`
}

// GrowthSetting 增长计分配置
type GrowthSetting struct {
	FeatureThreshold       int                     `json:"feature_threshold"`
	DefaultBoostWeight     float64                 `json:"default_boost_weight"`
	EngagementWeights      GrowthEngagementWeights `json:"engagement_weights"`
	PlatformWeights        map[string]float64      `json:"platform_weights"`
	TierMultipliers        map[string]float64      `json:"tier_multipliers"`
	DecayBrackets          []GrowthDecayBracket    `json:"decay_brackets"`
	DecayStaleFactor       float64                 `json:"decay_stale_factor"`
	RescoreBatchSize       int                     `json:"rescore_batch_size"`
	RescoreIntervalMinutes int                     `json:"rescore_interval_minutes"`
}

// GrowthDefaultSetting 默认增长计分配置
func GrowthDefaultSetting() GrowthSetting {
	return NormalizeGrowthSetting(GrowthSetting{
		FeatureThreshold:   constants.DefaultFeatureThreshold,
		DefaultBoostWeight: constants.DefaultShareBoostWeight,
		EngagementWeights: GrowthEngagementWeights{
			Pageview: 0.1,
			Like:     2.0,
			Comment:  3.0,
		},
		PlatformWeights: map[string]float64{
			constants.SharePlatformHackernews: 8.0,
			constants.SharePlatformReddit:     6.0,
			constants.SharePlatformTwitter:    5.0,
			constants.SharePlatformLinkedin:   4.0,
			constants.SharePlatformEmail:      4.0,
			constants.SharePlatformFacebook:   3.0,
			constants.SharePlatformCopyLink:   2.0,
			constants.SharePlatformDiscord:    2.0,
			constants.SharePlatformSlack:      2.0,
		},
		TierMultipliers: map[string]float64{
			constants.SubscriptionTierFree:       1.0,
			constants.SubscriptionTierPro:        1.3,
			constants.SubscriptionTierBusiness:   1.5,
			constants.SubscriptionTierEnterprise: 1.8,
		},
		DecayBrackets:          growthDefaultDecayBrackets(),
		DecayStaleFactor:       growthDefaultDecayStaleFactor,
		RescoreBatchSize:       200,
		RescoreIntervalMinutes: 60,
	})
}

// NormalizeGrowthSetting 归一化增长计分配置
func NormalizeGrowthSetting(setting GrowthSetting) GrowthSetting {
	if setting.FeatureThreshold < growthFeatureThresholdMin {
		setting.FeatureThreshold = constants.DefaultFeatureThreshold
	}
	if setting.FeatureThreshold > growthFeatureThresholdMax {
		setting.FeatureThreshold = growthFeatureThresholdMax
	}

	setting.DefaultBoostWeight = roundGrowthDecimal(setting.DefaultBoostWeight)
	if setting.DefaultBoostWeight < growthDefaultBoostMin || setting.DefaultBoostWeight > growthDefaultBoostMax {
		setting.DefaultBoostWeight = constants.DefaultShareBoostWeight
	}

	setting.EngagementWeights.Pageview = clampGrowthWeight(setting.EngagementWeights.Pageview, 0.1)
	setting.EngagementWeights.Like = clampGrowthWeight(setting.EngagementWeights.Like, 2.0)
	setting.EngagementWeights.Comment = clampGrowthWeight(setting.EngagementWeights.Comment, 3.0)

	setting.PlatformWeights = normalizeGrowthPlatformWeights(setting.PlatformWeights)
	setting.TierMultipliers = normalizeGrowthTierMultipliers(setting.TierMultipliers)

	setting.DecayBrackets = normalizeGrowthDecayBrackets(setting.DecayBrackets)
	setting.DecayStaleFactor = roundGrowthDecimal(setting.DecayStaleFactor)
	if setting.DecayStaleFactor < growthDecayFactorMin || setting.DecayStaleFactor > growthDecayFactorMax {
		setting.DecayStaleFactor = growthDefaultDecayStaleFactor
	}

	if setting.RescoreBatchSize < growthRescoreBatchSizeMin || setting.RescoreBatchSize > growthRescoreBatchSizeMax {
		setting.RescoreBatchSize = 200
	}
	if setting.RescoreIntervalMinutes < growthRescoreIntervalMin || setting.RescoreIntervalMinutes > growthRescoreIntervalMax {
		setting.RescoreIntervalMinutes = 60
	}
	return setting
}

// ValidateGrowthSetting 校验增长计分配置
func ValidateGrowthSetting(setting GrowthSetting) error {
	normalized := NormalizeGrowthSetting(setting)
	if normalized.FeatureThreshold < growthFeatureThresholdMin || normalized.FeatureThreshold > growthFeatureThresholdMax {
		return fmt.Errorf("%w: 自动精选阈值必须在 1-1000 之间", ErrGrowthConfigInvalid)
	}
	for platform, weight := range normalized.PlatformWeights {
		if weight < growthWeightMin || weight > growthWeightMax {
			return fmt.Errorf("%w: 平台 %s 权重必须在 0-100 之间", ErrGrowthConfigInvalid, platform)
		}
	}
	for tier, factor := range normalized.TierMultipliers {
		if factor < growthTierMultiplierMin || factor > growthTierMultiplierMax {
			return fmt.Errorf("%w: 等级 %s 系数必须在 0.1-10 之间", ErrGrowthConfigInvalid, tier)
		}
	}
	for _, bracket := range normalized.DecayBrackets {
		if bracket.Factor < growthDecayFactorMin || bracket.Factor > growthDecayFactorMax {
			return fmt.Errorf("%w: 衰减档位第 %d 天系数必须在 0.1-10 之间", ErrGrowthConfigInvalid, bracket.MaxAgeDays)
		}
	}
	return nil
}

// GrowthSettingToMap 将增长计分配置转换为 settings 存储结构
func GrowthSettingToMap(setting GrowthSetting) map[string]interface{} {
	normalized := NormalizeGrowthSetting(setting)
	platformWeights := make(map[string]interface{}, len(normalized.PlatformWeights))
	for platform, weight := range normalized.PlatformWeights {
		platformWeights[platform] = weight
	}
	tierMultipliers := make(map[string]interface{}, len(normalized.TierMultipliers))
	for tier, factor := range normalized.TierMultipliers {
		tierMultipliers[tier] = factor
	}
	decayBrackets := make([]interface{}, 0, len(normalized.DecayBrackets))
	for _, bracket := range normalized.DecayBrackets {
		decayBrackets = append(decayBrackets, map[string]interface{}{
			"max_age_days": bracket.MaxAgeDays,
			"factor":       bracket.Factor,
		})
	}
	return map[string]interface{}{
		"feature_threshold":    normalized.FeatureThreshold,
		"default_boost_weight": normalized.DefaultBoostWeight,
		"engagement_weights": map[string]interface{}{
			"pageview": normalized.EngagementWeights.Pageview,
			"like":     normalized.EngagementWeights.Like,
			"comment":  normalized.EngagementWeights.Comment,
		},
		"platform_weights":         platformWeights,
		"tier_multipliers":         tierMultipliers,
		"decay_brackets":           decayBrackets,
		"decay_stale_factor":       normalized.DecayStaleFactor,
		"rescore_batch_size":       normalized.RescoreBatchSize,
		"rescore_interval_minutes": normalized.RescoreIntervalMinutes,
	}
}

func growthSettingFromJSON(raw models.JSON, fallback GrowthSetting) GrowthSetting {
	result := fallback

	if thresholdRaw, ok := raw["feature_threshold"]; ok {
		if parsed, err := parseSettingInt(thresholdRaw); err == nil {
			result.FeatureThreshold = parsed
		}
	}
	if boostRaw, ok := raw["default_boost_weight"]; ok {
		if parsed, err := parseSettingFloat(boostRaw); err == nil {
			result.DefaultBoostWeight = parsed
		}
	}
	if weightsRaw, ok := raw["engagement_weights"].(map[string]interface{}); ok {
		if value, exists := weightsRaw["pageview"]; exists {
			if parsed, err := parseSettingFloat(value); err == nil {
				result.EngagementWeights.Pageview = parsed
			}
		}
		if value, exists := weightsRaw["like"]; exists {
			if parsed, err := parseSettingFloat(value); err == nil {
				result.EngagementWeights.Like = parsed
			}
		}
		if value, exists := weightsRaw["comment"]; exists {
			if parsed, err := parseSettingFloat(value); err == nil {
				result.EngagementWeights.Comment = parsed
			}
		}
	}
	if platformRaw, ok := raw["platform_weights"].(map[string]interface{}); ok {
		weights := make(map[string]float64, len(platformRaw))
		for platform, value := range platformRaw {
			if parsed, err := parseSettingFloat(value); err == nil {
				weights[platform] = parsed
			}
		}
		result.PlatformWeights = mergeGrowthFloatMap(result.PlatformWeights, weights)
	}
	if tierRaw, ok := raw["tier_multipliers"].(map[string]interface{}); ok {
		multipliers := make(map[string]float64, len(tierRaw))
		for tier, value := range tierRaw {
			if parsed, err := parseSettingFloat(value); err == nil {
				multipliers[tier] = parsed
			}
		}
		result.TierMultipliers = mergeGrowthFloatMap(result.TierMultipliers, multipliers)
	}
	if bracketsRaw, ok := raw["decay_brackets"].([]interface{}); ok {
		if brackets := parseGrowthDecayBrackets(bracketsRaw); len(brackets) > 0 {
			result.DecayBrackets = brackets
		}
	}
	if staleRaw, ok := raw["decay_stale_factor"]; ok {
		if parsed, err := parseSettingFloat(staleRaw); err == nil {
			result.DecayStaleFactor = parsed
		}
	}
	if batchRaw, ok := raw["rescore_batch_size"]; ok {
		if parsed, err := parseSettingInt(batchRaw); err == nil {
			result.RescoreBatchSize = parsed
		}
	}
	if intervalRaw, ok := raw["rescore_interval_minutes"]; ok {
		if parsed, err := parseSettingInt(intervalRaw); err == nil {
			result.RescoreIntervalMinutes = parsed
		}
	}

	return NormalizeGrowthSetting(result)
}

func normalizeGrowthSettingMap(value map[string]interface{}) models.JSON {
	setting := growthSettingFromJSON(models.JSON(value), GrowthDefaultSetting())
	return models.JSON(GrowthSettingToMap(setting))
}

// GetGrowthSetting 获取增长计分设置（优先 settings，空时回退默认）
func (s *SettingService) GetGrowthSetting() (GrowthSetting, error) {
	fallback := GrowthDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyGrowthConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return growthSettingFromJSON(value, fallback), nil
}

// UpdateGrowthSetting 更新增长计分设置
func (s *SettingService) UpdateGrowthSetting(setting GrowthSetting) (GrowthSetting, error) {
	normalized := NormalizeGrowthSetting(setting)
	if err := ValidateGrowthSetting(normalized); err != nil {
		return GrowthDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyGrowthConfig, GrowthSettingToMap(normalized)); err != nil {
		return GrowthDefaultSetting(), err
	}
	return normalized, nil
}

func normalizeGrowthPlatformWeights(weights map[string]float64) map[string]float64 {
	defaults := map[string]float64{
		constants.SharePlatformHackernews: 8.0,
		constants.SharePlatformReddit:     6.0,
		constants.SharePlatformTwitter:    5.0,
		constants.SharePlatformLinkedin:   4.0,
		constants.SharePlatformEmail:      4.0,
		constants.SharePlatformFacebook:   3.0,
		constants.SharePlatformCopyLink:   2.0,
		constants.SharePlatformDiscord:    2.0,
		constants.SharePlatformSlack:      2.0,
	}
	result := make(map[string]float64, len(defaults))
	for _, platform := range constants.SupportedSharePlatforms {
		weight, ok := weights[platform]
		if !ok {
			result[platform] = defaults[platform]
			continue
		}
		weight = roundGrowthDecimal(weight)
		if weight < growthWeightMin || weight > growthWeightMax {
			weight = defaults[platform]
		}
		result[platform] = weight
	}
	return result
}

func normalizeGrowthTierMultipliers(multipliers map[string]float64) map[string]float64 {
	defaults := map[string]float64{
		constants.SubscriptionTierFree:       1.0,
		constants.SubscriptionTierPro:        1.3,
		constants.SubscriptionTierBusiness:   1.5,
		constants.SubscriptionTierEnterprise: 1.8,
	}
	tiers := []string{
		constants.SubscriptionTierFree,
		constants.SubscriptionTierPro,
		constants.SubscriptionTierBusiness,
		constants.SubscriptionTierEnterprise,
	}
	result := make(map[string]float64, len(tiers))
	for _, tier := range tiers {
		factor, ok := multipliers[tier]
		if !ok {
			result[tier] = defaults[tier]
			continue
		}
		factor = roundGrowthDecimal(factor)
		if factor < growthTierMultiplierMin || factor > growthTierMultiplierMax {
			factor = defaults[tier]
		}
		result[tier] = factor
	}
	return result
}

func growthDefaultDecayBrackets() []GrowthDecayBracket {
	return []GrowthDecayBracket{
		{MaxAgeDays: 7, Factor: 1.2},
		{MaxAgeDays: 30, Factor: 1.0},
		{MaxAgeDays: 90, Factor: 0.8},
	}
}

// normalizeGrowthDecayBrackets 衰减档位要求天数严格递增、系数在区间内，违反时整体回退默认档位
func normalizeGrowthDecayBrackets(brackets []GrowthDecayBracket) []GrowthDecayBracket {
	if len(brackets) == 0 || len(brackets) > growthDecayBracketMax {
		return growthDefaultDecayBrackets()
	}
	result := make([]GrowthDecayBracket, 0, len(brackets))
	lastDays := 0
	for _, bracket := range brackets {
		factor := roundGrowthDecimal(bracket.Factor)
		if bracket.MaxAgeDays <= lastDays || bracket.MaxAgeDays > growthDecayAgeDaysMax {
			return growthDefaultDecayBrackets()
		}
		if factor < growthDecayFactorMin || factor > growthDecayFactorMax {
			return growthDefaultDecayBrackets()
		}
		result = append(result, GrowthDecayBracket{MaxAgeDays: bracket.MaxAgeDays, Factor: factor})
		lastDays = bracket.MaxAgeDays
	}
	return result
}

func parseGrowthDecayBrackets(items []interface{}) []GrowthDecayBracket {
	brackets := make([]GrowthDecayBracket, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		days, daysErr := parseSettingInt(entry["max_age_days"])
		factor, factorErr := parseSettingFloat(entry["factor"])
		if daysErr != nil || factorErr != nil {
			continue
		}
		brackets = append(brackets, GrowthDecayBracket{MaxAgeDays: days, Factor: factor})
	}
	return brackets
}

func mergeGrowthFloatMap(base, override map[string]float64) map[string]float64 {
	result := make(map[string]float64, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

func clampGrowthWeight(value, fallback float64) float64 {
	value = roundGrowthDecimal(value)
	if value < growthWeightMin || value > growthWeightMax {
		return fallback
	}
	return value
}

func roundGrowthDecimal(value float64) float64 {
	return math.Round(value*100) / 100
}
