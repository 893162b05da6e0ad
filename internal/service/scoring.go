package service

import (
	"time"

	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
)

// ScoreInput 病毒分计算输入
type ScoreInput struct {
	Pageviews      int64
	Likes          int64
	Comments       int64
	PlatformBoosts map[string]decimal.Decimal
	Tier           string
	CreatedAt      time.Time
}

// ScoreBreakdown 病毒分计算过程明细
type ScoreBreakdown struct {
	EngagementScore decimal.Decimal `json:"engagement_score"`
	ShareScore      decimal.Decimal `json:"share_score"`
	DecayFactor     decimal.Decimal `json:"decay_factor"`
	TierMultiplier  decimal.Decimal `json:"tier_multiplier"`
	Total           models.Score    `json:"total"`
}

// ScoreCalculator 病毒分计算器（纯计算，不触达存储）
type ScoreCalculator struct {
	setting GrowthSetting
}

// NewScoreCalculator 创建病毒分计算器
func NewScoreCalculator(setting GrowthSetting) *ScoreCalculator {
	return &ScoreCalculator{setting: NormalizeGrowthSetting(setting)}
}

// Setting 返回计算器使用的配置
func (c *ScoreCalculator) Setting() GrowthSetting {
	return c.setting
}

// PlatformWeight 返回平台权重，未配置平台回退到保底权重
func (c *ScoreCalculator) PlatformWeight(platform string) decimal.Decimal {
	if weight, ok := c.setting.PlatformWeights[platform]; ok {
		return decimal.NewFromFloat(weight)
	}
	return decimal.NewFromFloat(growthFallbackShareWeight)
}

// EngagementScore 计算互动分：浏览、点赞、评论各按权重累计
func (c *ScoreCalculator) EngagementScore(pageviews, likes, comments int64) decimal.Decimal {
	pv := decimal.NewFromInt(pageviews).Mul(decimal.NewFromFloat(c.setting.EngagementWeights.Pageview))
	like := decimal.NewFromInt(likes).Mul(decimal.NewFromFloat(c.setting.EngagementWeights.Like))
	comment := decimal.NewFromInt(comments).Mul(decimal.NewFromFloat(c.setting.EngagementWeights.Comment))
	return pv.Add(like).Add(comment)
}

// ShareScore 计算分享分：各平台加成权重之和乘以平台权重后累计
func (c *ScoreCalculator) ShareScore(platformBoosts map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for platform, boost := range platformBoosts {
		if boost.LessThanOrEqual(decimal.Zero) {
			continue
		}
		total = total.Add(c.PlatformWeight(platform).Mul(boost))
	}
	return total
}

// TierMultiplier 返回订阅等级系数，未知等级按 free 处理
func (c *ScoreCalculator) TierMultiplier(tier string) decimal.Decimal {
	if factor, ok := c.setting.TierMultipliers[tier]; ok {
		return decimal.NewFromFloat(factor)
	}
	return decimal.NewFromFloat(growthFallbackTierFactor)
}

// DecayFactor 按站点年龄返回时间衰减系数，档位取自配置（归一化保证天数递增），超过末档按过期系数计
func (c *ScoreCalculator) DecayFactor(createdAt, now time.Time) decimal.Decimal {
	age := now.Sub(createdAt)
	for _, bracket := range c.setting.DecayBrackets {
		if age <= time.Duration(bracket.MaxAgeDays)*24*time.Hour {
			return decimal.NewFromFloat(bracket.Factor)
		}
	}
	return decimal.NewFromFloat(c.setting.DecayStaleFactor)
}

// NextDecayBoundary 返回站点下一次衰减换档时间，已到最后一档时返回 nil
func (c *ScoreCalculator) NextDecayBoundary(createdAt, now time.Time) *time.Time {
	age := now.Sub(createdAt)
	for _, bracket := range c.setting.DecayBrackets {
		boundary := time.Duration(bracket.MaxAgeDays) * 24 * time.Hour
		if age <= boundary {
			next := createdAt.Add(boundary)
			return &next
		}
	}
	return nil
}

// buildArtifactScoreInput 由站点行与平台加成聚合构造计算输入
func buildArtifactScoreInput(artifact *models.Artifact, tier string, boosts map[string]decimal.Decimal) ScoreInput {
	return ScoreInput{
		Pageviews:      artifact.Pageviews,
		Likes:          artifact.Likes,
		Comments:       artifact.Comments,
		PlatformBoosts: boosts,
		Tier:           tier,
		CreatedAt:      artifact.CreatedAt,
	}
}

// Compute 计算病毒分：(互动分 + 分享分) × 时间衰减 × 等级系数，四舍五入到 2 位
func (c *ScoreCalculator) Compute(input ScoreInput, now time.Time) ScoreBreakdown {
	engagement := c.EngagementScore(input.Pageviews, input.Likes, input.Comments)
	share := c.ShareScore(input.PlatformBoosts)
	decay := c.DecayFactor(input.CreatedAt, now)
	tier := c.TierMultiplier(input.Tier)

	total := engagement.Add(share).Mul(decay).Mul(tier).Round(2)
	return ScoreBreakdown{
		EngagementScore: engagement.Round(2),
		ShareScore:      share.Round(2),
		DecayFactor:     decay,
		TierMultiplier:  tier,
		Total:           models.NewScoreFromDecimal(total),
	}
}
