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

func setupArtifactRepositoryTest(t *testing.T) (*GormArtifactRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:artifact_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Artifact{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewArtifactRepository(db), db
}

func createTestArtifact(t *testing.T, db *gorm.DB, ownerID uint, slug string, status string) *models.Artifact {
	t.Helper()
	artifact := &models.Artifact{
		PublicID:       fmt.Sprintf("artifact-%s", slug),
		OwnerAccountID: ownerID,
		Title:          slug,
		Slug:           slug,
		Status:         status,
	}
	if err := db.Create(artifact).Error; err != nil {
		t.Fatalf("create artifact failed: %v", err)
	}
	return artifact
}

func TestArtifactRepositoryGetBySlug(t *testing.T) {
	repo, db := setupArtifactRepositoryTest(t)
	owner := createTestAccount(t, db, "slug-owner@example.com", constants.SubscriptionTierFree)
	created := createTestArtifact(t, db, owner.ID, "my-landing", constants.ArtifactStatusActive)

	got, err := repo.GetBySlug("my-landing")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("get by slug mismatch: %+v", got)
	}

	missing, err := repo.GetBySlug("missing-slug")
	if err != nil {
		t.Fatalf("get missing slug failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing slug should return nil")
	}
}

func TestArtifactRepositoryListFilters(t *testing.T) {
	repo, db := setupArtifactRepositoryTest(t)
	owner := createTestAccount(t, db, "list-owner@example.com", constants.SubscriptionTierFree)
	createTestArtifact(t, db, owner.ID, "portfolio-site", constants.ArtifactStatusActive)
	createTestArtifact(t, db, owner.ID, "coffee-shop", constants.ArtifactStatusDraft)

	rows, total, err := repo.List(ArtifactListFilter{Page: 1, PageSize: 10, Status: constants.ArtifactStatusActive})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "portfolio-site" {
		t.Fatalf("list by status mismatch: total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ArtifactListFilter{Page: 1, PageSize: 10, Keyword: "coffee"})
	if err != nil {
		t.Fatalf("list by keyword failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "coffee-shop" {
		t.Fatalf("list by keyword mismatch: total=%d len=%d", total, len(rows))
	}

	autoFeatured := true
	_, total, err = repo.List(ArtifactListFilter{Page: 1, PageSize: 10, AutoFeatured: &autoFeatured})
	if err != nil {
		t.Fatalf("list by auto featured failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("auto featured total want 0 got %d", total)
	}
}

func TestArtifactRepositoryListShowcaseCandidatesOrder(t *testing.T) {
	repo, db := setupArtifactRepositoryTest(t)
	owner := createTestAccount(t, db, "candidate-owner@example.com", constants.SubscriptionTierFree)
	now := time.Now().UTC().Truncate(time.Second)

	makeCandidate := func(slug string, score float64, featuredAt time.Time, status string) {
		artifact := createTestArtifact(t, db, owner.ID, slug, status)
		artifact.AutoFeatured = true
		artifact.FeaturedAt = &featuredAt
		artifact.ViralScore = models.NewScoreFromDecimal(decimal.NewFromFloat(score))
		if err := db.Save(artifact).Error; err != nil {
			t.Fatalf("save candidate failed: %v", err)
		}
	}

	makeCandidate("low-score", 80, now.Add(-3*time.Hour), constants.ArtifactStatusFeatured)
	makeCandidate("tied-late", 120, now.Add(-1*time.Hour), constants.ArtifactStatusFeatured)
	makeCandidate("tied-early", 120, now.Add(-2*time.Hour), constants.ArtifactStatusViral)

	// 非候选：未精选或已下架的站点不应出现。
	createTestArtifact(t, db, owner.ID, "plain-active", constants.ArtifactStatusActive)

	candidates, err := repo.ListShowcaseCandidates()
	if err != nil {
		t.Fatalf("list showcase candidates failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("candidates len want 3 got %d", len(candidates))
	}
	if candidates[0].Slug != "tied-early" || candidates[1].Slug != "tied-late" || candidates[2].Slug != "low-score" {
		t.Fatalf("candidate order mismatch: %s %s %s", candidates[0].Slug, candidates[1].Slug, candidates[2].Slug)
	}
}

func TestArtifactRepositoryListIDsForRescore(t *testing.T) {
	repo, db := setupArtifactRepositoryTest(t)
	owner := createTestAccount(t, db, "rescore-owner@example.com", constants.SubscriptionTierFree)

	first := createTestArtifact(t, db, owner.ID, "rescore-a", constants.ArtifactStatusActive)
	second := createTestArtifact(t, db, owner.ID, "rescore-b", constants.ArtifactStatusFeatured)
	createTestArtifact(t, db, owner.ID, "rescore-draft", constants.ArtifactStatusDraft)
	createTestArtifact(t, db, owner.ID, "rescore-suspended", constants.ArtifactStatusSuspended)

	ids, err := repo.ListIDsForRescore(10, 0)
	if err != nil {
		t.Fatalf("list ids for rescore failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != first.ID || ids[1] != second.ID {
		t.Fatalf("rescore ids mismatch: %v", ids)
	}

	ids, err = repo.ListIDsForRescore(10, first.ID)
	if err != nil {
		t.Fatalf("list ids after cursor failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != second.ID {
		t.Fatalf("rescore ids after cursor mismatch: %v", ids)
	}
}
