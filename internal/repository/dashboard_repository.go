package repository

import (
	"fmt"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt, staleBefore time.Time) (DashboardOverviewRow, error)
	GetShareTrends(startAt, endAt time.Time) ([]DashboardShareTrendRow, error)
	GetReferralTrends(startAt, endAt time.Time) ([]DashboardReferralTrendRow, error)
	GetPlatformBreakdown(startAt, endAt time.Time) ([]DashboardPlatformRow, error)
	GetTopArtifacts(limit int) ([]DashboardArtifactRankingRow, error)
	GetTopReferrers(startAt, endAt time.Time, limit int) ([]DashboardReferrerRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	AccountsTotal          int64
	NewAccounts            int64
	ArtifactsTotal         int64
	LiveArtifacts          int64
	FeaturedArtifacts      int64
	SuspendedArtifacts     int64
	SharesTotal            int64
	NewReferrals           int64
	ConvertedReferrals     int64
	StalePendingReferrals  int64
	CommissionPending      float64
	CommissionAvailable    float64
	CommissionPaid         float64
	PendingCommissionCount int64
	ShowcaseEntries        int64
	FailedAdminLogins      int64
}

// DashboardShareTrendRow 分享趋势统计
type DashboardShareTrendRow struct {
	Day             string
	SharesTotal     int64
	UniqueArtifacts int64
}

// DashboardReferralTrendRow 推荐趋势统计
type DashboardReferralTrendRow struct {
	Day       string
	Created   int64
	Converted int64
}

// DashboardPlatformRow 平台分布原始行
type DashboardPlatformRow struct {
	Platform   string
	Shares     int64
	BoostTotal float64
}

// DashboardArtifactRankingRow 站点排行原始行
type DashboardArtifactRankingRow struct {
	ArtifactID uint
	Title      string
	Status     string
	ViralScore float64
	ShareCount int64
}

// DashboardReferrerRankingRow 推荐人排行原始行
type DashboardReferrerRankingRow struct {
	AccountID        uint
	Email            string
	DisplayName      string
	Entries          int64
	CommissionAmount float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func liveArtifactStatuses() []string {
	return []string{
		constants.ArtifactStatusActive,
		constants.ArtifactStatusFeatured,
		constants.ArtifactStatusViral,
	}
}

// GetOverview 获取总览统计，staleBefore 之前仍为 pending 的推荐计入滞留数
func (r *GormDashboardRepository) GetOverview(startAt, endAt, staleBefore time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.Account{}).Count(&result.AccountsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Account{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewAccounts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Artifact{}).Count(&result.ArtifactsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Artifact{}).
		Where("status IN ?", liveArtifactStatuses()).
		Count(&result.LiveArtifacts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Artifact{}).
		Where("auto_featured = ?", true).
		Count(&result.FeaturedArtifacts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Artifact{}).
		Where("status = ?", constants.ArtifactStatusSuspended).
		Count(&result.SuspendedArtifacts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.ShareEvent{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.SharesTotal).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Referral{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewReferrals).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Referral{}).
		Where("converted_at IS NOT NULL AND converted_at >= ? AND converted_at < ?", startAt, endAt).
		Count(&result.ConvertedReferrals).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Referral{}).
		Where("status = ? AND created_at < ?", constants.ReferralStatusPending, staleBefore).
		Count(&result.StalePendingReferrals).Error; err != nil {
		return result, err
	}

	commissionSum := func(status string, dest *float64) error {
		return r.db.Model(&models.CommissionLedgerEntry{}).
			Where("status = ?", status).
			Select("COALESCE(SUM(commission_amount), 0)").
			Scan(dest).Error
	}
	if err := commissionSum(constants.CommissionStatusPending, &result.CommissionPending); err != nil {
		return result, err
	}
	if err := commissionSum(constants.CommissionStatusAvailable, &result.CommissionAvailable); err != nil {
		return result, err
	}
	if err := commissionSum(constants.CommissionStatusPaid, &result.CommissionPaid); err != nil {
		return result, err
	}
	if err := r.db.Model(&models.CommissionLedgerEntry{}).
		Where("status = ?", constants.CommissionStatusPending).
		Count(&result.PendingCommissionCount).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.ShowcaseEntry{}).Count(&result.ShowcaseEntries).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.AdminLoginLog{}).
		Where("status = ? AND created_at >= ? AND created_at < ?", constants.LoginLogStatusFailed, startAt, endAt).
		Count(&result.FailedAdminLogins).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetShareTrends 获取分享趋势
func (r *GormDashboardRepository) GetShareTrends(startAt, endAt time.Time) ([]DashboardShareTrendRow, error) {
	dayExpr := "CAST(date(created_at) AS TEXT)"

	rows := make([]DashboardShareTrendRow, 0)
	if err := r.db.Model(&models.ShareEvent{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as shares_total, COUNT(DISTINCT artifact_id) as unique_artifacts", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetReferralTrends 获取推荐趋势
func (r *GormDashboardRepository) GetReferralTrends(startAt, endAt time.Time) ([]DashboardReferralTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var createdRows []countRow
	if err := r.db.Model(&models.Referral{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&createdRows).Error; err != nil {
		return nil, err
	}

	convertedExpr := "CAST(date(converted_at) AS TEXT)"
	var convertedRows []countRow
	if err := r.db.Model(&models.Referral{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", convertedExpr)).
		Where("converted_at IS NOT NULL AND converted_at >= ? AND converted_at < ?", startAt, endAt).
		Group(convertedExpr).
		Order("day asc").
		Scan(&convertedRows).Error; err != nil {
		return nil, err
	}

	convertedMap := make(map[string]int64, len(convertedRows))
	for _, item := range convertedRows {
		convertedMap[item.Day] = item.Total
	}

	seen := make(map[string]struct{}, len(createdRows)+len(convertedRows))
	result := make([]DashboardReferralTrendRow, 0, len(createdRows))
	for _, item := range createdRows {
		seen[item.Day] = struct{}{}
		result = append(result, DashboardReferralTrendRow{
			Day:       item.Day,
			Created:   item.Total,
			Converted: convertedMap[item.Day],
		})
	}
	for _, item := range convertedRows {
		if _, ok := seen[item.Day]; ok {
			continue
		}
		result = append(result, DashboardReferralTrendRow{
			Day:       item.Day,
			Converted: item.Total,
		})
	}
	return result, nil
}

// GetPlatformBreakdown 获取分享平台分布
func (r *GormDashboardRepository) GetPlatformBreakdown(startAt, endAt time.Time) ([]DashboardPlatformRow, error) {
	rows := make([]DashboardPlatformRow, 0)
	if err := r.db.Model(&models.ShareEvent{}).
		Select("platform, COUNT(*) as shares, COALESCE(SUM(boost_weight), 0) as boost_total").
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("platform").
		Order("shares DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopArtifacts 获取站点病毒分排行榜
func (r *GormDashboardRepository) GetTopArtifacts(limit int) ([]DashboardArtifactRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardArtifactRankingRow, 0)
	if err := r.db.Model(&models.Artifact{}).
		Select("id as artifact_id, title, status, viral_score, external_share_count as share_count").
		Where("status IN ?", liveArtifactStatuses()).
		Order("viral_score DESC, external_share_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopReferrers 获取推荐人佣金排行榜
func (r *GormDashboardRepository) GetTopReferrers(startAt, endAt time.Time, limit int) ([]DashboardReferrerRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardReferrerRankingRow, 0)
	if err := r.db.Model(&models.CommissionLedgerEntry{}).
		Select(`
			commission_ledger_entries.beneficiary_account_id as account_id,
			COALESCE(accounts.email, '') as email,
			COALESCE(accounts.display_name, '') as display_name,
			COUNT(*) as entries,
			COALESCE(SUM(commission_ledger_entries.commission_amount), 0) as commission_amount
		`).
		Joins("LEFT JOIN accounts ON accounts.id = commission_ledger_entries.beneficiary_account_id").
		Where("commission_ledger_entries.created_at >= ? AND commission_ledger_entries.created_at < ?", startAt, endAt).
		Group("commission_ledger_entries.beneficiary_account_id, accounts.email, accounts.display_name").
		Order("commission_amount DESC, entries DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
