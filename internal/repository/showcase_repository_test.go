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

func setupShowcaseRepositoryTest(t *testing.T) (*GormShowcaseRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:showcase_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Artifact{}, &models.ShowcaseEntry{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewShowcaseRepository(db), db
}

func buildShowcaseEntry(artifactID, accountID uint, score float64, order int, tier string, featuredAt time.Time) models.ShowcaseEntry {
	return models.ShowcaseEntry{
		ArtifactID:         artifactID,
		AccountID:          accountID,
		ScoreSnapshot:      models.NewScoreFromDecimal(decimal.NewFromFloat(score)),
		ShareCountSnapshot: 6,
		BoostTier:          tier,
		DisplayOrder:       order,
		FeaturedAt:         featuredAt,
	}
}

func TestShowcaseRepositoryReplaceAll(t *testing.T) {
	repo, db := setupShowcaseRepositoryTest(t)
	owner := createTestAccount(t, db, "showcase-owner@example.com", constants.SubscriptionTierFree)
	first := createTestArtifact(t, db, owner.ID, "showcase-a", constants.ArtifactStatusFeatured)
	second := createTestArtifact(t, db, owner.ID, "showcase-b", constants.ArtifactStatusViral)
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.Create(&models.ShowcaseEntry{
		ArtifactID:   first.ID,
		AccountID:    owner.ID,
		BoostTier:    constants.BoostTierBronze,
		DisplayOrder: 1,
		FeaturedAt:   now,
	}); err != nil {
		t.Fatalf("create initial entry failed: %v", err)
	}

	entries := []models.ShowcaseEntry{
		buildShowcaseEntry(second.ID, owner.ID, 300, 1, constants.BoostTierViral, now.Add(-time.Hour)),
		buildShowcaseEntry(first.ID, owner.ID, 120, 2, constants.BoostTierSilver, now),
	}
	if err := repo.ReplaceAll(entries); err != nil {
		t.Fatalf("replace all failed: %v", err)
	}

	rows, total, err := repo.List(ShowcaseListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list showcase failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("showcase list want 2 got total=%d len=%d", total, len(rows))
	}
	if rows[0].ArtifactID != second.ID || rows[1].ArtifactID != first.ID {
		t.Fatalf("showcase order mismatch: %d %d", rows[0].ArtifactID, rows[1].ArtifactID)
	}
	if rows[0].BoostTier != constants.BoostTierViral {
		t.Fatalf("first entry boost tier want viral got %s", rows[0].BoostTier)
	}
}

func TestShowcaseRepositoryReplaceAllEmptyClears(t *testing.T) {
	repo, db := setupShowcaseRepositoryTest(t)
	owner := createTestAccount(t, db, "clear-owner@example.com", constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, "clear-site", constants.ArtifactStatusFeatured)
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.Create(&models.ShowcaseEntry{
		ArtifactID:   artifact.ID,
		AccountID:    owner.ID,
		BoostTier:    constants.BoostTierBronze,
		DisplayOrder: 1,
		FeaturedAt:   now,
	}); err != nil {
		t.Fatalf("create entry failed: %v", err)
	}

	if err := repo.ReplaceAll(nil); err != nil {
		t.Fatalf("replace all with empty failed: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count want 0 got %d", count)
	}
}

func TestShowcaseRepositoryGetAndDeleteByArtifact(t *testing.T) {
	repo, db := setupShowcaseRepositoryTest(t)
	owner := createTestAccount(t, db, "del-owner@example.com", constants.SubscriptionTierFree)
	artifact := createTestArtifact(t, db, owner.ID, "del-site", constants.ArtifactStatusFeatured)
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.Create(&models.ShowcaseEntry{
		ArtifactID:   artifact.ID,
		AccountID:    owner.ID,
		BoostTier:    constants.BoostTierBronze,
		DisplayOrder: 1,
		FeaturedAt:   now,
	}); err != nil {
		t.Fatalf("create entry failed: %v", err)
	}

	got, err := repo.GetByArtifactID(artifact.ID)
	if err != nil {
		t.Fatalf("get by artifact failed: %v", err)
	}
	if got == nil || got.ArtifactID != artifact.ID {
		t.Fatalf("get by artifact mismatch: %+v", got)
	}

	if err := repo.DeleteByArtifactID(artifact.ID); err != nil {
		t.Fatalf("delete by artifact failed: %v", err)
	}
	got, err = repo.GetByArtifactID(artifact.ID)
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("entry should be deleted")
	}
}
