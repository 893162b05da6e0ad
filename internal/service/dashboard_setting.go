package service

import (
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
)

// DashboardAlertSetting 仪表盘告警阈值，越界的值会被拉回默认值
type DashboardAlertSetting struct {
	SuspendedArtifactsThreshold int64 `json:"suspended_artifacts_threshold"`
	StaleReferralsThreshold     int64 `json:"stale_referrals_threshold"`
	PendingCommissionsThreshold int64 `json:"pending_commissions_threshold"`
	FailedLoginsThreshold       int64 `json:"failed_logins_threshold"`
}

// DashboardRankingSetting 仪表盘榜单长度配置
type DashboardRankingSetting struct {
	TopArtifactsLimit int `json:"top_artifacts_limit"`
	TopReferrersLimit int `json:"top_referrers_limit"`
}

// DashboardSetting 仪表盘配置
type DashboardSetting struct {
	Alert   DashboardAlertSetting   `json:"alert"`
	Ranking DashboardRankingSetting `json:"ranking"`
}

// DashboardDefaultSetting 仪表盘默认配置
func DashboardDefaultSetting() DashboardSetting {
	return NormalizeDashboardSetting(DashboardSetting{})
}

// NormalizeDashboardSetting 把仪表盘配置收敛到合法区间
func NormalizeDashboardSetting(setting DashboardSetting) DashboardSetting {
	alert := &setting.Alert
	alert.SuspendedArtifactsThreshold = clampInt64Or(alert.SuspendedArtifactsThreshold, 1, 10000, 5)
	alert.StaleReferralsThreshold = clampInt64Or(alert.StaleReferralsThreshold, 1, 100000, 50)
	alert.PendingCommissionsThreshold = clampInt64Or(alert.PendingCommissionsThreshold, 1, 100000, 200)
	alert.FailedLoginsThreshold = clampInt64Or(alert.FailedLoginsThreshold, 1, 100000, 10)

	ranking := &setting.Ranking
	ranking.TopArtifactsLimit = clampOr(ranking.TopArtifactsLimit, 1, 20, 5)
	ranking.TopReferrersLimit = clampOr(ranking.TopReferrersLimit, 1, 20, 5)
	return setting
}

// DashboardSettingToMap 仪表盘配置转存储结构
func DashboardSettingToMap(setting DashboardSetting) map[string]interface{} {
	normalized := NormalizeDashboardSetting(setting)
	alert := map[string]interface{}{
		"suspended_artifacts_threshold": normalized.Alert.SuspendedArtifactsThreshold,
		"stale_referrals_threshold":     normalized.Alert.StaleReferralsThreshold,
		"pending_commissions_threshold": normalized.Alert.PendingCommissionsThreshold,
		"failed_logins_threshold":       normalized.Alert.FailedLoginsThreshold,
	}
	ranking := map[string]interface{}{
		"top_artifacts_limit": normalized.Ranking.TopArtifactsLimit,
		"top_referrers_limit": normalized.Ranking.TopReferrersLimit,
	}
	return map[string]interface{}{"alert": alert, "ranking": ranking}
}

// dashboardSettingFromJSON 从存储结构还原仪表盘配置，解析不出来的字段保留 fallback
func dashboardSettingFromJSON(value models.JSON, fallback DashboardSetting) DashboardSetting {
	result := fallback

	override := func(source map[string]interface{}, key string, assign func(int)) {
		raw, exists := source[key]
		if !exists {
			return
		}
		if parsed, err := parseSettingInt(raw); err == nil {
			assign(parsed)
		}
	}

	if alertMap := asSettingMap(value["alert"]); alertMap != nil {
		override(alertMap, "suspended_artifacts_threshold", func(v int) { result.Alert.SuspendedArtifactsThreshold = int64(v) })
		override(alertMap, "stale_referrals_threshold", func(v int) { result.Alert.StaleReferralsThreshold = int64(v) })
		override(alertMap, "pending_commissions_threshold", func(v int) { result.Alert.PendingCommissionsThreshold = int64(v) })
		override(alertMap, "failed_logins_threshold", func(v int) { result.Alert.FailedLoginsThreshold = int64(v) })
	}
	if rankingMap := asSettingMap(value["ranking"]); rankingMap != nil {
		override(rankingMap, "top_artifacts_limit", func(v int) { result.Ranking.TopArtifactsLimit = v })
		override(rankingMap, "top_referrers_limit", func(v int) { result.Ranking.TopReferrersLimit = v })
	}

	return NormalizeDashboardSetting(result)
}

// GetDashboardSetting 读取仪表盘配置，缺失时返回默认值
func (s *SettingService) GetDashboardSetting() (DashboardSetting, error) {
	fallback := DashboardDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeyDashboardConfig)
	if err != nil || value == nil {
		return fallback, err
	}
	return dashboardSettingFromJSON(value, fallback), nil
}

// clampInt64Or 与 clampOr 相同，只是作用于 int64 阈值
func clampInt64Or(value, min, max, fallback int64) int64 {
	if value < min || value > max {
		return fallback
	}
	return value
}
