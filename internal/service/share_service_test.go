package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupGrowthServiceTest(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Setting{},
		&models.Account{},
		&models.Artifact{},
		&models.ShareEvent{},
		&models.Referral{},
		&models.CommissionLedgerEntry{},
		&models.ShowcaseEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newShareServiceForTest(t *testing.T) (*ShareService, *gorm.DB) {
	t.Helper()
	db := setupGrowthServiceTest(t, "share_service_test")
	settingService := NewSettingService(repository.NewSettingRepository(db))
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	svc := NewShareService(
		repository.NewArtifactRepository(db),
		repository.NewAccountRepository(db),
		repository.NewShareEventRepository(db),
		repository.NewShowcaseRepository(db),
		settingService,
		queueClient,
	)
	return svc, db
}

func createTestAccount(t *testing.T, db *gorm.DB, id uint, tier string) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:               id,
		PublicID:         fmt.Sprintf("acct-%d", id),
		Email:            fmt.Sprintf("account_%d@example.com", id),
		SubscriptionTier: tier,
		Status:           constants.AccountStatusActive,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	return account
}

func createTestArtifact(t *testing.T, db *gorm.DB, ownerID uint, status string, createdAt time.Time) *models.Artifact {
	t.Helper()
	artifact := &models.Artifact{
		PublicID:         fmt.Sprintf("site-%d", time.Now().UnixNano()),
		OwnerAccountID:   ownerID,
		Title:            "Test Site",
		Slug:             fmt.Sprintf("test-site-%d", time.Now().UnixNano()),
		Status:           status,
		ShowcaseEligible: true,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	if err := db.Create(artifact).Error; err != nil {
		t.Fatalf("create artifact failed: %v", err)
	}
	return artifact
}

func TestRecordShareUnknownPlatformHasNoSideEffects(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	_, err := svc.RecordShare(RecordShareInput{
		ArtifactID: artifact.ID,
		Platform:   "telegram",
	})
	if !errors.Is(err, ErrSharePlatformInvalid) {
		t.Fatalf("expected ErrSharePlatformInvalid, got %v", err)
	}

	var eventCount int64
	if err := db.Model(&models.ShareEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count share events failed: %v", err)
	}
	if eventCount != 0 {
		t.Fatalf("expected no share events, got %d", eventCount)
	}

	var reloaded models.Artifact
	if err := db.First(&reloaded, artifact.ID).Error; err != nil {
		t.Fatalf("reload artifact failed: %v", err)
	}
	if reloaded.ExternalShareCount != 0 {
		t.Fatalf("expected share count unchanged, got %d", reloaded.ExternalShareCount)
	}
	if reloaded.ViralScore.String() != "0.00" {
		t.Fatalf("expected viral score unchanged, got %s", reloaded.ViralScore.String())
	}
}

func TestRecordShareComputesViralScore(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	event, err := svc.RecordShare(RecordShareInput{
		ArtifactID: artifact.ID,
		Platform:   constants.SharePlatformHackernews,
		TargetURL:  "https://news.ycombinator.com/item?id=1",
	})
	if err != nil {
		t.Fatalf("record share failed: %v", err)
	}
	if event.Platform != constants.SharePlatformHackernews {
		t.Fatalf("expected platform hackernews, got %s", event.Platform)
	}
	if event.PlatformWeight.String() != "8.00" {
		t.Fatalf("expected platform weight 8.00, got %s", event.PlatformWeight.String())
	}

	var reloaded models.Artifact
	if err := db.First(&reloaded, artifact.ID).Error; err != nil {
		t.Fatalf("reload artifact failed: %v", err)
	}
	// 分享分 8×1，衰减 1.2，pro 乘数 1.3
	if reloaded.ViralScore.String() != "12.48" {
		t.Fatalf("expected viral score 12.48, got %s", reloaded.ViralScore.String())
	}
	if reloaded.ExternalShareCount != 1 {
		t.Fatalf("expected share count 1, got %d", reloaded.ExternalShareCount)
	}

	var reloadedOwner models.Account
	if err := db.First(&reloadedOwner, owner.ID).Error; err != nil {
		t.Fatalf("reload owner failed: %v", err)
	}
	if reloadedOwner.SharesReceived != 1 {
		t.Fatalf("expected owner shares received 1, got %d", reloadedOwner.SharesReceived)
	}
}

func TestRecordShareCreditsActor(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	actor := createTestAccount(t, db, 2, constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	if _, err := svc.RecordShare(RecordShareInput{
		ArtifactID:     artifact.ID,
		Platform:       constants.SharePlatformTwitter,
		ActorAccountID: &actor.ID,
	}); err != nil {
		t.Fatalf("record share failed: %v", err)
	}

	var reloadedActor models.Account
	if err := db.First(&reloadedActor, actor.ID).Error; err != nil {
		t.Fatalf("reload actor failed: %v", err)
	}
	if reloadedActor.SharesInitiated != 1 {
		t.Fatalf("expected actor shares initiated 1, got %d", reloadedActor.SharesInitiated)
	}
	if reloadedActor.ViralScore.String() != "1.00" {
		t.Fatalf("expected actor viral score 1.00, got %s", reloadedActor.ViralScore.String())
	}
}

func TestRecordShareRejectsDisabledActor(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	actor := createTestAccount(t, db, 2, constants.SubscriptionTierFree)
	if err := db.Model(&models.Account{}).Where("id = ?", actor.ID).
		Update("status", constants.AccountStatusDisabled).Error; err != nil {
		t.Fatalf("disable actor failed: %v", err)
	}
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	_, err := svc.RecordShare(RecordShareInput{
		ArtifactID:     artifact.ID,
		Platform:       constants.SharePlatformTwitter,
		ActorAccountID: &actor.ID,
	})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestRecordShareRejectsSuspendedArtifact(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusSuspended, time.Now())

	_, err := svc.RecordShare(RecordShareInput{
		ArtifactID: artifact.ID,
		Platform:   constants.SharePlatformTwitter,
	})
	if !errors.Is(err, ErrArtifactSuspended) {
		t.Fatalf("expected ErrArtifactSuspended, got %v", err)
	}
}

func TestRecordShareAutoFeaturesExactlyOnce(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	for i := 0; i < 10; i++ {
		if _, err := svc.RecordShare(RecordShareInput{
			ArtifactID: artifact.ID,
			Platform:   constants.SharePlatformTwitter,
		}); err != nil {
			t.Fatalf("record share %d failed: %v", i+1, err)
		}
	}

	var reloaded models.Artifact
	if err := db.First(&reloaded, artifact.ID).Error; err != nil {
		t.Fatalf("reload artifact failed: %v", err)
	}
	if reloaded.ExternalShareCount != 10 {
		t.Fatalf("expected share count 10, got %d", reloaded.ExternalShareCount)
	}
	if !reloaded.AutoFeatured {
		t.Fatalf("expected artifact auto featured")
	}
	if reloaded.Status != constants.ArtifactStatusFeatured {
		t.Fatalf("expected status featured, got %s", reloaded.Status)
	}
	if reloaded.FeaturedAt == nil {
		t.Fatalf("expected featured_at to be set")
	}

	var entryCount int64
	if err := db.Model(&models.ShowcaseEntry{}).Where("artifact_id = ?", artifact.ID).Count(&entryCount).Error; err != nil {
		t.Fatalf("count showcase entries failed: %v", err)
	}
	if entryCount != 1 {
		t.Fatalf("expected exactly one showcase entry, got %d", entryCount)
	}

	var eventCount int64
	if err := db.Model(&models.ShareEvent{}).Where("artifact_id = ?", artifact.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count share events failed: %v", err)
	}
	if eventCount != 10 {
		t.Fatalf("expected 10 share events, got %d", eventCount)
	}
}

func TestRecordShareBoostOverrideWithinBounds(t *testing.T) {
	svc, db := newShareServiceForTest(t)
	owner := createTestAccount(t, db, 1, constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, constants.ArtifactStatusActive, time.Now())

	boost := 2.5
	event, err := svc.RecordShare(RecordShareInput{
		ArtifactID:  artifact.ID,
		Platform:    constants.SharePlatformReddit,
		BoostWeight: &boost,
	})
	if err != nil {
		t.Fatalf("record share failed: %v", err)
	}
	if event.BoostWeight.String() != "2.50" {
		t.Fatalf("expected boost weight 2.50, got %s", event.BoostWeight.String())
	}

	var reloaded models.Artifact
	if err := db.First(&reloaded, artifact.ID).Error; err != nil {
		t.Fatalf("reload artifact failed: %v", err)
	}
	// 分享分 6×2.5=15，衰减 1.2，free 乘数 1.0
	if reloaded.ViralScore.String() != "18.00" {
		t.Fatalf("expected viral score 18.00, got %s", reloaded.ViralScore.String())
	}
}
