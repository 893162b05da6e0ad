package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupShareEventRepositoryTest(t *testing.T) (*GormShareEventRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:share_event_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Artifact{}, &models.ShareEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewShareEventRepository(db), db
}

func createTestShareEvent(t *testing.T, repo *GormShareEventRepository, artifactID uint, platform string, boost string) {
	t.Helper()
	event := &models.ShareEvent{
		ArtifactID:     artifactID,
		Platform:       platform,
		PlatformWeight: models.NewScoreFromDecimal(decimal.NewFromInt(5)),
		BoostWeight:    models.NewScoreFromDecimal(decimal.RequireFromString(boost)),
		TargetURL:      "https://example.com/site",
	}
	if err := repo.Create(event); err != nil {
		t.Fatalf("create share event failed: %v", err)
	}
}

func TestShareEventRepositorySumBoostByPlatform(t *testing.T) {
	repo, db := setupShareEventRepositoryTest(t)
	owner := createTestAccount(t, db, "sum-owner@example.com", constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, "sum-site", constants.ArtifactStatusActive)
	other := createTestArtifact(t, db, owner.ID, "other-site", constants.ArtifactStatusActive)

	createTestShareEvent(t, repo, artifact.ID, constants.SharePlatformTwitter, "1")
	createTestShareEvent(t, repo, artifact.ID, constants.SharePlatformTwitter, "1.5")
	createTestShareEvent(t, repo, artifact.ID, constants.SharePlatformHackernews, "2")
	createTestShareEvent(t, repo, other.ID, constants.SharePlatformReddit, "1")

	sums, err := repo.SumBoostByPlatform(artifact.ID)
	if err != nil {
		t.Fatalf("sum boost by platform failed: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("platform sums len want 2 got %d", len(sums))
	}
	if !sums[constants.SharePlatformTwitter].Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("twitter boost want 2.5 got %s", sums[constants.SharePlatformTwitter])
	}
	if !sums[constants.SharePlatformHackernews].Equal(decimal.NewFromInt(2)) {
		t.Fatalf("hackernews boost want 2 got %s", sums[constants.SharePlatformHackernews])
	}
}

func TestShareEventRepositorySumBoostByPlatformEmpty(t *testing.T) {
	repo, db := setupShareEventRepositoryTest(t)
	owner := createTestAccount(t, db, "empty-owner@example.com", constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, "empty-site", constants.ArtifactStatusActive)

	sums, err := repo.SumBoostByPlatform(artifact.ID)
	if err != nil {
		t.Fatalf("sum boost by platform failed: %v", err)
	}
	if len(sums) != 0 {
		t.Fatalf("platform sums should be empty, got %v", sums)
	}
}

func TestShareEventRepositoryCountAndList(t *testing.T) {
	repo, db := setupShareEventRepositoryTest(t)
	owner := createTestAccount(t, db, "count-owner@example.com", constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, "count-site", constants.ArtifactStatusActive)

	createTestShareEvent(t, repo, artifact.ID, constants.SharePlatformTwitter, "1")
	createTestShareEvent(t, repo, artifact.ID, constants.SharePlatformReddit, "1")

	count, err := repo.CountByArtifact(artifact.ID)
	if err != nil {
		t.Fatalf("count by artifact failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count want 2 got %d", count)
	}

	rows, total, err := repo.List(ShareEventListFilter{Page: 1, PageSize: 10, ArtifactID: artifact.ID, Platform: constants.SharePlatformReddit})
	if err != nil {
		t.Fatalf("list share events failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Platform != constants.SharePlatformReddit {
		t.Fatalf("list share events mismatch: total=%d len=%d", total, len(rows))
	}
}
