package service

import (
	"errors"
	"testing"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
)

// mockSettingRepo 内存版设置仓库
type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: make(map[string]models.JSON)}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	if value, ok := m.store[key]; ok {
		return &models.Setting{Key: key, ValueJSON: value}, nil
	}
	return nil, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestGetGrowthSettingFallbackToDefault(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	setting, err := svc.GetGrowthSetting()
	if err != nil {
		t.Fatalf("get growth setting failed: %v", err)
	}
	if setting.FeatureThreshold != constants.DefaultFeatureThreshold {
		t.Fatalf("expected default feature threshold, got %d", setting.FeatureThreshold)
	}
	if setting.PlatformWeights[constants.SharePlatformHackernews] != 8.0 {
		t.Fatalf("expected hackernews weight 8.0, got %v", setting.PlatformWeights[constants.SharePlatformHackernews])
	}
}

func TestUpdateGrowthSettingPersistsOverrides(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	custom := GrowthDefaultSetting()
	custom.FeatureThreshold = 10
	custom.PlatformWeights[constants.SharePlatformTwitter] = 7.5

	if _, err := svc.UpdateGrowthSetting(custom); err != nil {
		t.Fatalf("update growth setting failed: %v", err)
	}

	loaded, err := svc.GetGrowthSetting()
	if err != nil {
		t.Fatalf("reload growth setting failed: %v", err)
	}
	if loaded.FeatureThreshold != 10 {
		t.Fatalf("expected feature threshold 10, got %d", loaded.FeatureThreshold)
	}
	if loaded.PlatformWeights[constants.SharePlatformTwitter] != 7.5 {
		t.Fatalf("expected twitter weight 7.5, got %v", loaded.PlatformWeights[constants.SharePlatformTwitter])
	}
	if loaded.PlatformWeights[constants.SharePlatformReddit] != 6.0 {
		t.Fatalf("untouched reddit weight should stay 6.0, got %v", loaded.PlatformWeights[constants.SharePlatformReddit])
	}
}

func TestUpdateCommissionSettingRejectsDescendingRates(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	bad := CommissionDefaultSetting()
	bad.MidRate = 0.10

	_, err := svc.UpdateCommissionSetting(bad)
	if !errors.Is(err, ErrCommissionConfigInvalid) {
		t.Fatalf("expected commission config invalid error, got %v", err)
	}
}

func TestCommissionSettingRateBrackets(t *testing.T) {
	setting := CommissionDefaultSetting()

	cases := []struct {
		months int
		want   string
	}{
		{0, "0.2"},
		{12, "0.2"},
		{13, "0.25"},
		{48, "0.25"},
		{49, "0.4"},
		{120, "0.4"},
	}
	for _, tc := range cases {
		got := setting.RateForMonths(tc.months)
		if got.String() != tc.want {
			t.Fatalf("rate for %d months want %s got %s", tc.months, tc.want, got.String())
		}
	}
}

func TestUpdateShowcaseSettingNormalizesBands(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	custom := ShowcaseDefaultSetting()
	custom.SilverMinScore = 80
	custom.GoldMinScore = 40

	updated, err := svc.UpdateShowcaseSetting(custom)
	if err != nil {
		t.Fatalf("update showcase setting failed: %v", err)
	}
	// 阈值乱序时整组回退默认
	if updated.SilverMinScore != 50 || updated.GoldMinScore != 200 || updated.PlatinumMinScore != 500 {
		t.Fatalf("expected default bands after disorder, got %v/%v/%v", updated.SilverMinScore, updated.GoldMinScore, updated.PlatinumMinScore)
	}
}
