//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	// 表顺序按外键从子到父，建表时反向迁移
	tables := []interface{}{
		&models.ShowcaseEntry{},
		&models.CommissionLedgerEntry{},
		&models.Referral{},
		&models.ShareEvent{},
		&models.Artifact{},
		&models.Account{},
	}
	_ = db.Migrator().DropTable(tables...)

	migrate := make([]interface{}, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		migrate = append(migrate, tables[i])
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(tables...)
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresKeywordSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	account := &models.Account{
		PublicID:         "pg-acct-1",
		Email:            "maker@example.com",
		DisplayName:      "Maker",
		SubscriptionTier: constants.SubscriptionTierPro,
		Status:           constants.AccountStatusActive,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	artifactRepo := NewArtifactRepository(db)
	artifact := &models.Artifact{
		PublicID:       "pg-artifact-1",
		OwnerAccountID: account.ID,
		Title:          "Rocket Landing Page",
		Slug:           "rocket-landing",
		Status:         constants.ArtifactStatusActive,
	}
	if err := artifactRepo.Create(artifact); err != nil {
		t.Fatalf("create artifact failed: %v", err)
	}

	rows, total, err := artifactRepo.List(ArtifactListFilter{
		Page:    1,
		Keyword: "rocket",
	})
	if err != nil {
		t.Fatalf("artifact list keyword search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("artifact keyword search want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = artifactRepo.List(ArtifactListFilter{
		Page:    1,
		Keyword: "ROCKET",
	})
	if err != nil {
		t.Fatalf("artifact list uppercase keyword search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("artifact uppercase keyword search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresDashboardQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	account := &models.Account{
		PublicID:         "pg-dash-acct",
		Email:            "dash@example.com",
		DisplayName:      "Dash",
		SubscriptionTier: constants.SubscriptionTierFree,
		Status:           constants.AccountStatusActive,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	artifact := &models.Artifact{
		PublicID:           "pg-dash-artifact",
		OwnerAccountID:     account.ID,
		Title:              "Dashboard Sample",
		Slug:               "dashboard-sample",
		Status:             constants.ArtifactStatusActive,
		ExternalShareCount: 3,
		ViralScore:         models.NewScoreFromDecimal(decimal.NewFromFloat(42.5)),
	}
	if err := db.Create(artifact).Error; err != nil {
		t.Fatalf("create artifact failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		event := &models.ShareEvent{
			ArtifactID:     artifact.ID,
			Platform:       constants.SharePlatformTwitter,
			PlatformWeight: models.NewScoreFromDecimal(decimal.NewFromFloat(5.0)),
			BoostWeight:    models.NewScoreFromDecimal(decimal.NewFromInt(1)),
			TargetURL:      "https://example.com/dashboard-sample",
			CreatedAt:      now,
		}
		if err := db.Create(event).Error; err != nil {
			t.Fatalf("create share event failed: %v", err)
		}
	}

	activatedAt := now.Add(-30 * 24 * time.Hour)
	referral := &models.Referral{
		ReferrerAccountID: account.ID,
		ReferredEmail:     "friend@example.com",
		ReferralCode:      "PGDASH",
		Status:            constants.ReferralStatusConverted,
		ActivatedAt:       &activatedAt,
		ConvertedAt:       &now,
		CreatedAt:         now,
	}
	if err := db.Create(referral).Error; err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	entry := &models.CommissionLedgerEntry{
		ReferralID:           referral.ID,
		BeneficiaryAccountID: account.ID,
		PeriodStart:          now.AddDate(0, 0, -30),
		PeriodEnd:            now,
		SubscriptionAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(49)),
		CommissionRate:       models.NewMoneyFromDecimal(decimal.NewFromFloat(0.20)),
		CommissionAmount:     models.NewMoneyFromDecimal(decimal.NewFromFloat(9.80)),
		RelationshipMonths:   1,
		Status:               constants.CommissionStatusPending,
		CreatedAt:            now,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("create commission entry failed: %v", err)
	}

	startAt := now.Add(-time.Hour)
	endAt := now.Add(time.Hour)

	overview, err := repo.GetOverview(startAt, endAt)
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if overview.SharesTotal != 3 {
		t.Fatalf("overview shares want 3 got %d", overview.SharesTotal)
	}
	if overview.ConvertedReferrals != 1 {
		t.Fatalf("overview converted referrals want 1 got %d", overview.ConvertedReferrals)
	}

	shareTrends, err := repo.GetShareTrends(startAt, endAt)
	if err != nil {
		t.Fatalf("get share trends failed: %v", err)
	}
	if len(shareTrends) == 0 {
		t.Fatalf("share trends should not be empty")
	}
	if strings.TrimSpace(shareTrends[0].Day) == "" {
		t.Fatalf("share trend day should not be empty")
	}

	breakdown, err := repo.GetPlatformBreakdown(startAt, endAt)
	if err != nil {
		t.Fatalf("get platform breakdown failed: %v", err)
	}
	if len(breakdown) != 1 || breakdown[0].Platform != constants.SharePlatformTwitter {
		t.Fatalf("platform breakdown mismatch: %+v", breakdown)
	}

	topArtifacts, err := repo.GetTopArtifacts(5)
	if err != nil {
		t.Fatalf("get top artifacts failed: %v", err)
	}
	if len(topArtifacts) != 1 || topArtifacts[0].Title != "Dashboard Sample" {
		t.Fatalf("top artifacts mismatch: %+v", topArtifacts)
	}

	topReferrers, err := repo.GetTopReferrers(startAt, endAt, 5)
	if err != nil {
		t.Fatalf("get top referrers failed: %v", err)
	}
	if len(topReferrers) != 1 || topReferrers[0].AccountID != account.ID {
		t.Fatalf("top referrers mismatch: %+v", topReferrers)
	}
}
