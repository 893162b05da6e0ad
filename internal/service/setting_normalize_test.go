package service

import (
	"testing"

	"github.com/sitewave-growth/internal/constants"
)

// sectionMap 取结果里的子对象，类型不对直接失败
func sectionMap(t *testing.T, result map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	section, ok := result[key].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid %s payload type: %T", key, result[key])
	}
	return section
}

func settingInt(t *testing.T, value interface{}, label string) int {
	t.Helper()
	parsed, err := parseSettingInt(value)
	if err != nil {
		t.Fatalf("parse %s failed: %v", label, err)
	}
	return parsed
}

func settingFloat(t *testing.T, value interface{}, label string) float64 {
	t.Helper()
	parsed, err := parseSettingFloat(value)
	if err != nil {
		t.Fatalf("parse %s failed: %v", label, err)
	}
	return parsed
}

func TestUpdateSiteSettingNormalized(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"brand": map[string]interface{}{
			"site_name": "  SiteWave  ",
		},
		"contact": map[string]interface{}{
			"support_email": "  growth@sitewave.dev  ",
			"docs_url":      123,
		},
		"languages": []interface{}{" zh-CN ", "zh-CN", "", "en-US"},
		"extra":     "keep",
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	if brand := sectionMap(t, result, "brand"); brand["site_name"] != "SiteWave" {
		t.Fatalf("unexpected site_name: %v", brand["site_name"])
	}

	contact := sectionMap(t, result, "contact")
	if contact["support_email"] != "growth@sitewave.dev" {
		t.Fatalf("unexpected support_email: %v", contact["support_email"])
	}
	if contact["docs_url"] != "" {
		t.Fatalf("non-string docs_url should normalize to empty, got %v", contact["docs_url"])
	}

	languages, ok := result["languages"].([]string)
	if !ok {
		t.Fatalf("invalid languages payload type: %T", result["languages"])
	}
	if len(languages) != 2 || languages[0] != "zh-CN" || languages[1] != "en-US" {
		t.Fatalf("unexpected languages: %v", languages)
	}

	if result["extra"] != "keep" {
		t.Fatalf("unexpected extra field: %v", result["extra"])
	}
}

func TestUpdateGrowthSettingNormalizedThroughKey(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(constants.SettingKeyGrowthConfig, map[string]interface{}{
		"feature_threshold": "-3",
		"platform_weights": map[string]interface{}{
			constants.SharePlatformTwitter: 9999,
		},
	})
	if err != nil {
		t.Fatalf("update growth config failed: %v", err)
	}

	if threshold := settingInt(t, result["feature_threshold"], "feature_threshold"); threshold != constants.DefaultFeatureThreshold {
		t.Fatalf("out-of-range threshold should reset to default, got %d", threshold)
	}

	weights := sectionMap(t, result, "platform_weights")
	if weight := settingFloat(t, weights[constants.SharePlatformTwitter], "twitter weight"); weight != 5.0 {
		t.Fatalf("out-of-range twitter weight should reset to default, got %v", weight)
	}
}

func TestUpdateCommissionSettingNormalizedThroughKey(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(constants.SettingKeyCommissionConfig, map[string]interface{}{
		"intro_rate":   "2.5",
		"confirm_days": 9999,
	})
	if err != nil {
		t.Fatalf("update commission config failed: %v", err)
	}

	if introRate := settingFloat(t, result["intro_rate"], "intro_rate"); introRate != defaultCommissionIntroRate {
		t.Fatalf("out-of-range intro rate should reset to default, got %v", introRate)
	}
	if confirmDays := settingInt(t, result["confirm_days"], "confirm_days"); confirmDays != 14 {
		t.Fatalf("out-of-range confirm days should reset to default, got %d", confirmDays)
	}
}
