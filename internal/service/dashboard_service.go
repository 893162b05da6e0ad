package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/repository"
)

const (
	dashboardSnapshotTTL = 45 * time.Second
	maxCustomRangeDays   = 90
)

// DashboardService 汇总后台首页的增长统计，读多写少，结果走短 TTL 缓存
type DashboardService struct {
	repo           repository.DashboardRepository
	settingService *SettingService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, settingService *SettingService) *DashboardService {
	return &DashboardService{repo: repo, settingService: settingService}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	Timezone     string
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// DashboardWindowMeta 各响应公共的窗口描述，From/To 按闭区间展示
type DashboardWindowMeta struct {
	Range    string `json:"range"`
	From     string `json:"from"`
	To       string `json:"to"`
	Timezone string `json:"timezone"`
}

// DashboardOverviewResponse 总览：核心指标、增长漏斗与告警
type DashboardOverviewResponse struct {
	DashboardWindowMeta
	KPI    DashboardKPI         `json:"kpi"`
	Funnel DashboardFunnel      `json:"funnel"`
	Alerts []DashboardAlertItem `json:"alerts"`
}

// DashboardKPI 核心指标，金额字段输出两位小数字符串
type DashboardKPI struct {
	AccountsTotal       int64  `json:"accounts_total"`
	NewAccounts         int64  `json:"new_accounts"`
	ArtifactsTotal      int64  `json:"artifacts_total"`
	LiveArtifacts       int64  `json:"live_artifacts"`
	FeaturedArtifacts   int64  `json:"featured_artifacts"`
	SuspendedArtifacts  int64  `json:"suspended_artifacts"`
	SharesTotal         int64  `json:"shares_total"`
	NewReferrals        int64  `json:"new_referrals"`
	ConvertedReferrals  int64  `json:"converted_referrals"`
	ShowcaseEntries     int64  `json:"showcase_entries"`
	CommissionPending   string `json:"commission_pending"`
	CommissionAvailable string `json:"commission_available"`
	CommissionPaid      string `json:"commission_paid"`
}

// DashboardFunnel 分享到推荐转化的漏斗
type DashboardFunnel struct {
	SharesRecorded         int64  `json:"shares_recorded"`
	ArtifactsLive          int64  `json:"artifacts_live"`
	ArtifactsFeatured      int64  `json:"artifacts_featured"`
	FeatureRate            string `json:"feature_rate"`
	ReferralsCreated       int64  `json:"referrals_created"`
	ReferralsConverted     int64  `json:"referrals_converted"`
	ReferralConversionRate string `json:"referral_conversion_rate"`
}

// DashboardAlertItem 告警项，指标越过阈值才出现
type DashboardAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// DashboardTrendResponse 按天的分享与推荐趋势
type DashboardTrendResponse struct {
	DashboardWindowMeta
	Points []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 单日趋势点，无数据的日期补零
type DashboardTrendPoint struct {
	Date               string `json:"date"`
	SharesTotal        int64  `json:"shares_total"`
	UniqueArtifacts    int64  `json:"unique_artifacts"`
	ReferralsCreated   int64  `json:"referrals_created"`
	ReferralsConverted int64  `json:"referrals_converted"`
}

// DashboardPlatformResponse 分享平台分布
type DashboardPlatformResponse struct {
	DashboardWindowMeta
	Platforms []DashboardPlatformShare `json:"platforms"`
}

// DashboardPlatformShare 单个平台的占比项
type DashboardPlatformShare struct {
	Platform   string `json:"platform"`
	Shares     int64  `json:"shares"`
	BoostTotal string `json:"boost_total"`
	ShareRate  string `json:"share_rate"`
}

// DashboardRankingsResponse 站点与推荐人排行榜
type DashboardRankingsResponse struct {
	DashboardWindowMeta
	TopArtifacts []DashboardArtifactRanking `json:"top_artifacts"`
	TopReferrers []DashboardReferrerRanking `json:"top_referrers"`
}

// DashboardArtifactRanking 站点排行项
type DashboardArtifactRanking struct {
	ArtifactID uint   `json:"artifact_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	ViralScore string `json:"viral_score"`
	ShareCount int64  `json:"share_count"`
}

// DashboardReferrerRanking 推荐人排行项
type DashboardReferrerRanking struct {
	AccountID        uint   `json:"account_id"`
	Email            string `json:"email"`
	DisplayName      string `json:"display_name"`
	Entries          int64  `json:"entries"`
	CommissionAmount string `json:"commission_amount"`
}

// dashboardWindow 统一后的查询窗口，区间为 [startAt, endAt)
type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// cacheKey 拼缓存键，parts 放会影响结果的额外配置（阈值、榜单长度）
func (w dashboardWindow) cacheKey(kind string, parts ...interface{}) string {
	key := fmt.Sprintf("dashboard:%s:%s:%d:%d:%s", kind, w.rangeKey, w.startAt.Unix(), w.endAt.Unix(), w.timezone)
	for _, part := range parts {
		key += fmt.Sprintf(":%v", part)
	}
	return key
}

// meta 响应展示用窗口描述，截止时间回退一秒成闭区间
func (w dashboardWindow) meta() DashboardWindowMeta {
	return DashboardWindowMeta{
		Range:    w.rangeKey,
		From:     w.startAt.Format(time.RFC3339),
		To:       w.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: w.timezone,
	}
}

// readDashboardCache 强制刷新时跳过缓存，读取出错按未命中处理
func readDashboardCache(ctx context.Context, key string, force bool, out interface{}) bool {
	if force {
		return false
	}
	hit, err := cache.GetJSON(ctx, key, out)
	return err == nil && hit
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	// 阈值参与告警计算，必须进缓存键，否则改配置后还命中旧结果
	setting := s.loadDashboardSetting()
	key := window.cacheKey("overview",
		setting.Alert.SuspendedArtifactsThreshold,
		setting.Alert.StaleReferralsThreshold,
		setting.Alert.PendingCommissionsThreshold,
		setting.Alert.FailedLoginsThreshold,
	)
	var cached DashboardOverviewResponse
	if readDashboardCache(ctx, key, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt, s.resolveReferralStaleCutoff(time.Now()))
	if err != nil {
		return nil, err
	}

	response := &DashboardOverviewResponse{
		DashboardWindowMeta: window.meta(),
		KPI:                 buildDashboardKPI(overview),
		Funnel:              buildDashboardFunnel(overview),
		Alerts:              buildDashboardAlerts(overview, setting.Alert),
	}
	_ = cache.SetJSON(ctx, key, response, dashboardSnapshotTTL)
	return response, nil
}

// GetTrends 获取按天趋势，窗口内每一天都有数据点
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	key := window.cacheKey("trends")
	var cached DashboardTrendResponse
	if readDashboardCache(ctx, key, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	shareRows, err := s.repo.GetShareTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	referralRows, err := s.repo.GetReferralTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	response := &DashboardTrendResponse{
		DashboardWindowMeta: window.meta(),
		Points:              mergeTrendPoints(window, shareRows, referralRows),
	}
	_ = cache.SetJSON(ctx, key, response, dashboardSnapshotTTL)
	return response, nil
}

// GetPlatformBreakdown 获取分享平台分布
func (s *DashboardService) GetPlatformBreakdown(ctx context.Context, input DashboardQueryInput) (*DashboardPlatformResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardPlatformResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	key := window.cacheKey("platforms")
	var cached DashboardPlatformResponse
	if readDashboardCache(ctx, key, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	rows, err := s.repo.GetPlatformBreakdown(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	response := &DashboardPlatformResponse{
		DashboardWindowMeta: window.meta(),
		Platforms:           buildPlatformShares(rows),
	}
	_ = cache.SetJSON(ctx, key, response, dashboardSnapshotTTL)
	return response, nil
}

// GetRankings 获取排行榜，榜单长度由仪表盘配置决定
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	setting := s.loadDashboardSetting()
	key := window.cacheKey("rankings", setting.Ranking.TopArtifactsLimit, setting.Ranking.TopReferrersLimit)
	var cached DashboardRankingsResponse
	if readDashboardCache(ctx, key, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	artifactRows, err := s.repo.GetTopArtifacts(setting.Ranking.TopArtifactsLimit)
	if err != nil {
		return nil, err
	}
	referrerRows, err := s.repo.GetTopReferrers(window.startAt, window.endAt, setting.Ranking.TopReferrersLimit)
	if err != nil {
		return nil, err
	}

	artifacts := make([]DashboardArtifactRanking, 0, len(artifactRows))
	for _, row := range artifactRows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			title = "-"
		}
		artifacts = append(artifacts, DashboardArtifactRanking{
			ArtifactID: row.ArtifactID,
			Title:      title,
			Status:     row.Status,
			ViralScore: formatAmountValue(row.ViralScore),
			ShareCount: row.ShareCount,
		})
	}
	referrers := make([]DashboardReferrerRanking, 0, len(referrerRows))
	for _, row := range referrerRows {
		referrers = append(referrers, DashboardReferrerRanking{
			AccountID:        row.AccountID,
			Email:            strings.TrimSpace(row.Email),
			DisplayName:      strings.TrimSpace(row.DisplayName),
			Entries:          row.Entries,
			CommissionAmount: formatAmountValue(row.CommissionAmount),
		})
	}

	response := &DashboardRankingsResponse{
		DashboardWindowMeta: window.meta(),
		TopArtifacts:        artifacts,
		TopReferrers:        referrers,
	}
	_ = cache.SetJSON(ctx, key, response, dashboardSnapshotTTL)
	return response, nil
}

func (s *DashboardService) loadDashboardSetting() DashboardSetting {
	if s == nil || s.settingService == nil {
		return DashboardDefaultSetting()
	}
	setting, err := s.settingService.GetDashboardSetting()
	if err != nil {
		return DashboardDefaultSetting()
	}
	return NormalizeDashboardSetting(setting)
}

// resolveReferralStaleCutoff 过期天数之前创建且仍 pending 的推荐视为滞留
func (s *DashboardService) resolveReferralStaleCutoff(now time.Time) time.Time {
	days := CommissionDefaultSetting().ReferralExpiryDays
	if s != nil && s.settingService != nil {
		if setting, err := s.settingService.GetCommissionSetting(); err == nil {
			days = setting.ReferralExpiryDays
		}
	}
	return now.AddDate(0, 0, -days)
}

// resolveDashboardLocation 时区无法识别时静默退回服务器本地时区
func resolveDashboardLocation(raw string) (*time.Location, string) {
	name := strings.TrimSpace(raw)
	if name != "" {
		if location, err := time.LoadLocation(name); err == nil {
			return location, name
		}
	}
	return time.Local, time.Local.String()
}

// resolveDashboardWindow 把查询输入解析成半开区间，range 为空按最近 7 天
func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	location, timezone := resolveDashboardLocation(input.Timezone)
	window := dashboardWindow{
		rangeKey: strings.ToLower(strings.TrimSpace(input.Range)),
		timezone: timezone,
	}
	if window.rangeKey == "" {
		window.rangeKey = "7d"
	}
	if window.rangeKey == "custom" {
		return resolveCustomWindow(window, input, location)
	}

	days := 0
	switch window.rangeKey {
	case "today":
		days = 1
	case "7d":
		days = 7
	case "30d":
		days = 30
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	localNow := now.In(location)
	window.endAt = time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location).AddDate(0, 0, 1)
	window.startAt = window.endAt.AddDate(0, 0, -days)
	return window, nil
}

// resolveCustomWindow 自定义区间按闭区间理解，截止时间补一秒；跨度上限 90 天
func resolveCustomWindow(window dashboardWindow, input DashboardQueryInput, location *time.Location) (dashboardWindow, error) {
	if input.From == nil || input.To == nil {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	startAt := input.From.In(location)
	endAt := input.To.In(location)
	if endAt.Before(startAt) || endAt.Sub(startAt) > time.Hour*24*maxCustomRangeDays {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	window.startAt = startAt
	window.endAt = endAt.Add(time.Second)
	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

// mergeTrendPoints 按天对齐分享与推荐两路统计，天粒度跟随窗口时区
func mergeTrendPoints(window dashboardWindow, shares []repository.DashboardShareTrendRow, referrals []repository.DashboardReferralTrendRow) []DashboardTrendPoint {
	shareByDay := make(map[string]repository.DashboardShareTrendRow, len(shares))
	for _, row := range shares {
		shareByDay[row.Day] = row
	}
	referralByDay := make(map[string]repository.DashboardReferralTrendRow, len(referrals))
	for _, row := range referrals {
		referralByDay[row.Day] = row
	}

	start := window.startAt
	cursor := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	points := make([]DashboardTrendPoint, 0)
	for ; cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		share := shareByDay[day]
		referral := referralByDay[day]
		points = append(points, DashboardTrendPoint{
			Date:               day,
			SharesTotal:        share.SharesTotal,
			UniqueArtifacts:    share.UniqueArtifacts,
			ReferralsCreated:   referral.Created,
			ReferralsConverted: referral.Converted,
		})
	}
	return points
}

func buildPlatformShares(rows []repository.DashboardPlatformRow) []DashboardPlatformShare {
	var sharesTotal int64
	for _, row := range rows {
		sharesTotal += row.Shares
	}

	platforms := make([]DashboardPlatformShare, 0, len(rows))
	for _, row := range rows {
		platforms = append(platforms, DashboardPlatformShare{
			Platform:   strings.TrimSpace(row.Platform),
			Shares:     row.Shares,
			BoostTotal: formatAmountValue(row.BoostTotal),
			ShareRate:  formatPercentValue(percentOf(row.Shares, sharesTotal)),
		})
	}
	return platforms
}

func buildDashboardKPI(overview repository.DashboardOverviewRow) DashboardKPI {
	return DashboardKPI{
		AccountsTotal:       overview.AccountsTotal,
		NewAccounts:         overview.NewAccounts,
		ArtifactsTotal:      overview.ArtifactsTotal,
		LiveArtifacts:       overview.LiveArtifacts,
		FeaturedArtifacts:   overview.FeaturedArtifacts,
		SuspendedArtifacts:  overview.SuspendedArtifacts,
		SharesTotal:         overview.SharesTotal,
		NewReferrals:        overview.NewReferrals,
		ConvertedReferrals:  overview.ConvertedReferrals,
		ShowcaseEntries:     overview.ShowcaseEntries,
		CommissionPending:   formatAmountValue(overview.CommissionPending),
		CommissionAvailable: formatAmountValue(overview.CommissionAvailable),
		CommissionPaid:      formatAmountValue(overview.CommissionPaid),
	}
}

func buildDashboardFunnel(overview repository.DashboardOverviewRow) DashboardFunnel {
	return DashboardFunnel{
		SharesRecorded:         overview.SharesTotal,
		ArtifactsLive:          overview.LiveArtifacts,
		ArtifactsFeatured:      overview.FeaturedArtifacts,
		FeatureRate:            formatPercentValue(percentOf(overview.FeaturedArtifacts, overview.LiveArtifacts)),
		ReferralsCreated:       overview.NewReferrals,
		ReferralsConverted:     overview.ConvertedReferrals,
		ReferralConversionRate: formatPercentValue(percentOf(overview.ConvertedReferrals, overview.NewReferrals)),
	}
}

// buildDashboardAlerts 指标达到阈值即告警，等于阈值也算
func buildDashboardAlerts(overview repository.DashboardOverviewRow, alertSetting DashboardAlertSetting) []DashboardAlertItem {
	candidates := []struct {
		value     int64
		threshold int64
		kind      string
		level     string
	}{
		{overview.SuspendedArtifacts, alertSetting.SuspendedArtifactsThreshold, "suspended_artifacts", "error"},
		{overview.StalePendingReferrals, alertSetting.StaleReferralsThreshold, "stale_referrals", "warning"},
		{overview.PendingCommissionCount, alertSetting.PendingCommissionsThreshold, "pending_commissions", "warning"},
		{overview.FailedAdminLogins, alertSetting.FailedLoginsThreshold, "failed_admin_logins", "warning"},
	}

	alerts := make([]DashboardAlertItem, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.value >= candidate.threshold {
			alerts = append(alerts, DashboardAlertItem{Type: candidate.kind, Level: candidate.level, Value: candidate.value})
		}
	}
	return alerts
}

// percentOf 计算百分比，分母为零时返回 0
func percentOf(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func formatAmountValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
