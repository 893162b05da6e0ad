package service

import (
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"

	"github.com/shopspring/decimal"
)

func TestScoreCalculatorEngagementOnlyFreshFreeTier(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())
	now := time.Now().UTC()

	// 互动分 1000*0.1 = 100，5 天站龄衰减 1.2，free 系数 1.0。
	breakdown := calc.Compute(ScoreInput{
		Pageviews: 1000,
		Tier:      constants.SubscriptionTierFree,
		CreatedAt: now.Add(-5 * 24 * time.Hour),
	}, now)

	if breakdown.Total.String() != "120.00" {
		t.Fatalf("total want 120.00 got %s", breakdown.Total.String())
	}
	if breakdown.EngagementScore.StringFixed(2) != "100.00" {
		t.Fatalf("engagement want 100.00 got %s", breakdown.EngagementScore.StringFixed(2))
	}
}

func TestScoreCalculatorStaleDecay(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())
	now := time.Now().UTC()

	breakdown := calc.Compute(ScoreInput{
		Pageviews: 1000,
		Tier:      constants.SubscriptionTierFree,
		CreatedAt: now.Add(-95 * 24 * time.Hour),
	}, now)

	if breakdown.Total.String() != "60.00" {
		t.Fatalf("total want 60.00 got %s", breakdown.Total.String())
	}
}

func TestScoreCalculatorSingleHackernewsSharePro(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())
	now := time.Now().UTC()

	// 分享分 8.0*1.0 = 8，当天站龄衰减 1.2，pro 系数 1.3。
	breakdown := calc.Compute(ScoreInput{
		PlatformBoosts: map[string]decimal.Decimal{
			constants.SharePlatformHackernews: decimal.NewFromInt(1),
		},
		Tier:      constants.SubscriptionTierPro,
		CreatedAt: now,
	}, now)

	if breakdown.Total.String() != "12.48" {
		t.Fatalf("total want 12.48 got %s", breakdown.Total.String())
	}
}

func TestScoreCalculatorEngagementWeights(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())

	got := calc.EngagementScore(100, 10, 5)
	want := decimal.RequireFromString("45")
	if !got.Equal(want) {
		t.Fatalf("engagement want %s got %s", want, got)
	}
}

func TestDecayFactorBoundaries(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())
	now := time.Now().UTC()
	cases := []struct {
		days int
		want string
	}{
		{0, "1.2"},
		{7, "1.2"},
		{8, "1"},
		{30, "1"},
		{31, "0.8"},
		{90, "0.8"},
		{91, "0.6"},
	}
	for _, tc := range cases {
		got := calc.DecayFactor(now.Add(-time.Duration(tc.days)*24*time.Hour), now)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("decay at %d days want %s got %s", tc.days, tc.want, got)
		}
	}
}

func TestDecayFactorCustomBrackets(t *testing.T) {
	setting := GrowthDefaultSetting()
	setting.DecayBrackets = []GrowthDecayBracket{
		{MaxAgeDays: 3, Factor: 1.5},
		{MaxAgeDays: 14, Factor: 0.9},
	}
	setting.DecayStaleFactor = 0.5
	calc := NewScoreCalculator(setting)
	now := time.Now().UTC()

	if got := calc.DecayFactor(now.Add(-2*24*time.Hour), now); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("day 2 decay want 1.5 got %s", got)
	}
	if got := calc.DecayFactor(now.Add(-10*24*time.Hour), now); !got.Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("day 10 decay want 0.9 got %s", got)
	}
	if got := calc.DecayFactor(now.Add(-30*24*time.Hour), now); !got.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("day 30 decay want 0.5 got %s", got)
	}
}

func TestNextDecayBoundary(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())
	now := time.Now().UTC()
	createdAt := now.Add(-5 * 24 * time.Hour)

	next := calc.NextDecayBoundary(createdAt, now)
	if next == nil {
		t.Fatalf("fresh artifact should have a next boundary")
	}
	if !next.Equal(createdAt.Add(7 * 24 * time.Hour)) {
		t.Fatalf("next boundary want day 7, got %v", next)
	}

	stale := calc.NextDecayBoundary(now.Add(-120*24*time.Hour), now)
	if stale != nil {
		t.Fatalf("stale artifact should have no next boundary, got %v", stale)
	}
}

func TestScoreCalculatorUnknownPlatformFallbackWeight(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())

	share := calc.ShareScore(map[string]decimal.Decimal{
		"somewhere": decimal.NewFromInt(2),
	})
	if !share.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("fallback share score want 4 got %s", share)
	}
}

func TestScoreCalculatorUnknownTierFallback(t *testing.T) {
	calc := NewScoreCalculator(GrowthDefaultSetting())

	factor := calc.TierMultiplier("legacy")
	if !factor.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unknown tier factor want 1 got %s", factor)
	}
}

func TestNormalizeGrowthSettingFillsMissingPlatforms(t *testing.T) {
	setting := NormalizeGrowthSetting(GrowthSetting{
		PlatformWeights: map[string]float64{
			constants.SharePlatformTwitter: 9.0,
		},
	})

	if setting.PlatformWeights[constants.SharePlatformTwitter] != 9.0 {
		t.Fatalf("twitter weight want 9.0 got %v", setting.PlatformWeights[constants.SharePlatformTwitter])
	}
	if setting.PlatformWeights[constants.SharePlatformHackernews] != 8.0 {
		t.Fatalf("hackernews weight should fall back to default, got %v", setting.PlatformWeights[constants.SharePlatformHackernews])
	}
	if setting.FeatureThreshold != constants.DefaultFeatureThreshold {
		t.Fatalf("feature threshold should fall back to default, got %d", setting.FeatureThreshold)
	}
}

func TestNormalizeGrowthSettingRejectsUnorderedDecayBrackets(t *testing.T) {
	setting := NormalizeGrowthSetting(GrowthSetting{
		DecayBrackets: []GrowthDecayBracket{
			{MaxAgeDays: 30, Factor: 1.0},
			{MaxAgeDays: 7, Factor: 1.2},
		},
	})

	if len(setting.DecayBrackets) != 3 || setting.DecayBrackets[0].MaxAgeDays != 7 {
		t.Fatalf("unordered brackets should reset to defaults, got %+v", setting.DecayBrackets)
	}
	if setting.DecayStaleFactor != 0.6 {
		t.Fatalf("stale factor should default to 0.6, got %v", setting.DecayStaleFactor)
	}
}
