package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupReferralRepositoryTest(t *testing.T) (*GormReferralRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:referral_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Referral{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewReferralRepository(db), db
}

func TestReferralRepositoryGetByPair(t *testing.T) {
	repo, db := setupReferralRepositoryTest(t)
	referrer := createTestAccount(t, db, "pair-referrer@example.com", constants.SubscriptionTierPro)

	referral := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "friend@example.com",
		ReferralCode:      "PAIR01",
		Status:            constants.ReferralStatusPending,
	}
	if err := repo.Create(referral); err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	got, err := repo.GetByPair(referrer.ID, "  Friend@Example.com ")
	if err != nil {
		t.Fatalf("get by pair failed: %v", err)
	}
	if got == nil || got.ID != referral.ID {
		t.Fatalf("get by pair should normalize email, got %+v", got)
	}

	missing, err := repo.GetByPair(referrer.ID, "stranger@example.com")
	if err != nil {
		t.Fatalf("get missing pair failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing pair should return nil")
	}
}

func TestReferralRepositoryDuplicatePairRejected(t *testing.T) {
	repo, db := setupReferralRepositoryTest(t)
	referrer := createTestAccount(t, db, "dup-referrer@example.com", constants.SubscriptionTierPro)

	first := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "dup@example.com",
		ReferralCode:      "DUP01",
		Status:            constants.ReferralStatusPending,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first referral failed: %v", err)
	}

	second := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "dup@example.com",
		ReferralCode:      "DUP02",
		Status:            constants.ReferralStatusPending,
	}
	if err := repo.Create(second); err == nil {
		t.Fatalf("duplicate referral pair should be rejected by unique index")
	}
}

func TestReferralRepositoryExpireStalePending(t *testing.T) {
	repo, db := setupReferralRepositoryTest(t)
	referrer := createTestAccount(t, db, "expire-referrer@example.com", constants.SubscriptionTierPro)
	now := time.Now().UTC().Truncate(time.Second)

	stale := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "stale@example.com",
		ReferralCode:      "EXP01",
		Status:            constants.ReferralStatusPending,
		CreatedAt:         now.Add(-40 * 24 * time.Hour),
	}
	fresh := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "fresh@example.com",
		ReferralCode:      "EXP02",
		Status:            constants.ReferralStatusPending,
		CreatedAt:         now.Add(-2 * 24 * time.Hour),
	}
	activatedAt := now.Add(-50 * 24 * time.Hour)
	activated := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "activated@example.com",
		ReferralCode:      "EXP03",
		Status:            constants.ReferralStatusActivated,
		ActivatedAt:       &activatedAt,
		CreatedAt:         now.Add(-60 * 24 * time.Hour),
	}
	for _, referral := range []*models.Referral{stale, fresh, activated} {
		if err := repo.Create(referral); err != nil {
			t.Fatalf("create referral failed: %v", err)
		}
	}

	affected, err := repo.ExpireStalePending(now.Add(-30*24*time.Hour), now)
	if err != nil {
		t.Fatalf("expire stale pending failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	got, err := repo.GetByID(stale.ID)
	if err != nil {
		t.Fatalf("get stale referral failed: %v", err)
	}
	if got.Status != constants.ReferralStatusExpired || got.ExpiredAt == nil {
		t.Fatalf("stale referral should be expired, got status=%s", got.Status)
	}

	got, err = repo.GetByID(fresh.ID)
	if err != nil {
		t.Fatalf("get fresh referral failed: %v", err)
	}
	if got.Status != constants.ReferralStatusPending {
		t.Fatalf("fresh referral should stay pending, got %s", got.Status)
	}

	got, err = repo.GetByID(activated.ID)
	if err != nil {
		t.Fatalf("get activated referral failed: %v", err)
	}
	if got.Status != constants.ReferralStatusActivated {
		t.Fatalf("activated referral should be untouched, got %s", got.Status)
	}
}
