package service

import (
	"testing"

	"github.com/sitewave-growth/internal/constants"
)

func TestUpdateDashboardSettingFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		name  string
		input map[string]interface{}
	}{
		{
			name: "out_of_range_values",
			input: map[string]interface{}{
				"alert": map[string]interface{}{
					"suspended_artifacts_threshold": 99999,
					"stale_referrals_threshold":     -2,
					"pending_commissions_threshold": "200001",
					"failed_logins_threshold":       0,
				},
				"ranking": map[string]interface{}{
					"top_artifacts_limit": 999,
					"top_referrers_limit": -1,
				},
			},
		},
		{name: "empty_payload", input: map[string]interface{}{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewSettingService(newMockSettingRepo())
			result, err := svc.Update(constants.SettingKeyDashboardConfig, tc.input)
			if err != nil {
				t.Fatalf("update dashboard config failed: %v", err)
			}

			wantSettingInt(t, result, "alert", "suspended_artifacts_threshold", 5)
			wantSettingInt(t, result, "alert", "stale_referrals_threshold", 50)
			wantSettingInt(t, result, "alert", "pending_commissions_threshold", 200)
			wantSettingInt(t, result, "alert", "failed_logins_threshold", 10)
			wantSettingInt(t, result, "ranking", "top_artifacts_limit", 5)
			wantSettingInt(t, result, "ranking", "top_referrers_limit", 5)
		})
	}
}

func TestUpdateDashboardSettingKeepsValidValues(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	input := map[string]interface{}{
		"alert": map[string]interface{}{
			"suspended_artifacts_threshold": 20,
			"failed_logins_threshold":       3,
		},
		"ranking": map[string]interface{}{
			"top_artifacts_limit": 10,
		},
	}
	result, err := svc.Update(constants.SettingKeyDashboardConfig, input)
	if err != nil {
		t.Fatalf("update dashboard config failed: %v", err)
	}

	// 未提交的字段保持默认值
	wantSettingInt(t, result, "alert", "suspended_artifacts_threshold", 20)
	wantSettingInt(t, result, "alert", "stale_referrals_threshold", 50)
	wantSettingInt(t, result, "alert", "failed_logins_threshold", 3)
	wantSettingInt(t, result, "ranking", "top_artifacts_limit", 10)
	wantSettingInt(t, result, "ranking", "top_referrers_limit", 5)

	setting, err := svc.GetDashboardSetting()
	if err != nil {
		t.Fatalf("get dashboard setting failed: %v", err)
	}
	if setting.Alert.SuspendedArtifactsThreshold != 20 {
		t.Fatalf("unexpected suspended threshold after reload: %d", setting.Alert.SuspendedArtifactsThreshold)
	}
	if setting.Ranking.TopArtifactsLimit != 10 {
		t.Fatalf("unexpected artifacts limit after reload: %d", setting.Ranking.TopArtifactsLimit)
	}
}

func TestGetDashboardSettingWhenUnset(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	setting, err := svc.GetDashboardSetting()
	if err != nil {
		t.Fatalf("get dashboard setting failed: %v", err)
	}
	if setting != DashboardDefaultSetting() {
		t.Fatalf("expected defaults for unset key, got %+v", setting)
	}
}

func wantSettingInt(t *testing.T, payload map[string]interface{}, section, key string, expected int) {
	t.Helper()
	group, ok := payload[section].(map[string]interface{})
	if !ok {
		t.Fatalf("invalid %s payload type: %T", section, payload[section])
	}
	value, exists := group[key]
	if !exists {
		t.Fatalf("missing key %s.%s", section, key)
	}
	parsed, err := parseSettingInt(value)
	if err != nil {
		t.Fatalf("parse %s.%s failed: %v", section, key, err)
	}
	if parsed != expected {
		t.Fatalf("unexpected value for %s.%s, expected %d got %d", section, key, expected, parsed)
	}
}
