package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newReferralServiceForTest(t *testing.T) (*ReferralService, *gorm.DB) {
	t.Helper()
	db := setupGrowthServiceTest(t, "referral_service_test")
	settingService := NewSettingService(repository.NewSettingRepository(db))
	svc := NewReferralService(
		repository.NewReferralRepository(db),
		repository.NewAccountRepository(db),
		settingService,
	)
	return svc, db
}

func TestCreateReferralGeneratesCode(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	referral, err := svc.Create(CreateReferralInput{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "Friend@Example.com",
	})
	if err != nil {
		t.Fatalf("create referral failed: %v", err)
	}
	if referral.Status != constants.ReferralStatusPending {
		t.Fatalf("expected status pending, got %s", referral.Status)
	}
	if referral.ReferredEmail != "friend@example.com" {
		t.Fatalf("expected normalized email, got %s", referral.ReferredEmail)
	}
	if len(referral.ReferralCode) != 10 {
		t.Fatalf("expected 10-char referral code, got %q", referral.ReferralCode)
	}
}

func TestCreateReferralRejectsSelfReferral(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	_, err := svc.Create(CreateReferralInput{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     referrer.Email,
	})
	if !errors.Is(err, ErrReferralSelf) {
		t.Fatalf("expected ErrReferralSelf, got %v", err)
	}
}

func TestCreateReferralRejectsDuplicatePair(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	if _, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "dup@example.com"}); err != nil {
		t.Fatalf("create referral failed: %v", err)
	}
	_, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "DUP@example.com"})
	if !errors.Is(err, ErrReferralExists) {
		t.Fatalf("expected ErrReferralExists, got %v", err)
	}
}

func TestActivateReferralStampsActivation(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referred := createTestAccount(t, db, 2, constants.SubscriptionTierFree)

	referral, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: referred.Email})
	if err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	activated, err := svc.Activate(referral.ReferralCode, referred.ID)
	if err != nil {
		t.Fatalf("activate referral failed: %v", err)
	}
	if activated.Status != constants.ReferralStatusActivated {
		t.Fatalf("expected status activated, got %s", activated.Status)
	}
	if activated.ActivatedAt == nil {
		t.Fatalf("expected activated_at to be set")
	}
	if activated.ReferredAccountID == nil || *activated.ReferredAccountID != referred.ID {
		t.Fatalf("expected referred account bound")
	}

	var reloadedReferrer models.Account
	if err := db.First(&reloadedReferrer, referrer.ID).Error; err != nil {
		t.Fatalf("reload referrer failed: %v", err)
	}
	if reloadedReferrer.CommissionStartAt == nil {
		t.Fatalf("expected commission start stamped on first activation")
	}

	if _, err := svc.Activate(referral.ReferralCode, referred.ID); !errors.Is(err, ErrReferralStatusInvalid) {
		t.Fatalf("expected ErrReferralStatusInvalid on double activation, got %v", err)
	}
}

func TestActivateReferralRejectsSelfAccount(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	referral, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "other@example.com"})
	if err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	if _, err := svc.Activate(referral.ReferralCode, referrer.ID); !errors.Is(err, ErrReferralSelf) {
		t.Fatalf("expected ErrReferralSelf, got %v", err)
	}
}

func TestConvertReferralRequiresActivation(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	referral, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "lead@example.com"})
	if err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	_, err = svc.Convert(ConvertReferralInput{
		ReferralID:       referral.ID,
		SubscriptionTier: constants.SubscriptionTierPro,
		ConversionValue:  decimal.NewFromInt(29),
	})
	if !errors.Is(err, ErrReferralStatusInvalid) {
		t.Fatalf("expected ErrReferralStatusInvalid, got %v", err)
	}
}

func TestConvertThenChurnReferral(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referred := createTestAccount(t, db, 2, constants.SubscriptionTierFree)

	referral, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: referred.Email})
	if err != nil {
		t.Fatalf("create referral failed: %v", err)
	}
	if _, err := svc.Activate(referral.ReferralCode, referred.ID); err != nil {
		t.Fatalf("activate referral failed: %v", err)
	}

	converted, err := svc.Convert(ConvertReferralInput{
		ReferralID:       referral.ID,
		SubscriptionTier: constants.SubscriptionTierBusiness,
		ConversionValue:  decimal.NewFromInt(99),
	})
	if err != nil {
		t.Fatalf("convert referral failed: %v", err)
	}
	if converted.Status != constants.ReferralStatusConverted {
		t.Fatalf("expected status converted, got %s", converted.Status)
	}
	if converted.ConversionTier != constants.SubscriptionTierBusiness {
		t.Fatalf("expected conversion tier business, got %s", converted.ConversionTier)
	}
	if converted.ConvertedAt == nil {
		t.Fatalf("expected converted_at to be set")
	}

	churned, err := svc.Churn(referral.ID)
	if err != nil {
		t.Fatalf("churn referral failed: %v", err)
	}
	if churned.Status != constants.ReferralStatusChurned {
		t.Fatalf("expected status churned, got %s", churned.Status)
	}
	if churned.ChurnedAt == nil {
		t.Fatalf("expected churned_at to be set")
	}
}

func TestExpireStaleReferrals(t *testing.T) {
	svc, db := newReferralServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)

	stale, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "stale@example.com"})
	if err != nil {
		t.Fatalf("create stale referral failed: %v", err)
	}
	// 默认过期窗口 30 天，回拨创建时间使其超龄
	if err := db.Model(&models.Referral{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().AddDate(0, 0, -31)).Error; err != nil {
		t.Fatalf("backdate referral failed: %v", err)
	}
	fresh, err := svc.Create(CreateReferralInput{ReferrerAccountID: referrer.ID, ReferredEmail: "fresh@example.com"})
	if err != nil {
		t.Fatalf("create fresh referral failed: %v", err)
	}

	expired, err := svc.ExpireStale()
	if err != nil {
		t.Fatalf("expire stale failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired referral, got %d", expired)
	}

	var reloadedStale models.Referral
	if err := db.First(&reloadedStale, stale.ID).Error; err != nil {
		t.Fatalf("reload stale referral failed: %v", err)
	}
	if reloadedStale.Status != constants.ReferralStatusExpired {
		t.Fatalf("expected stale referral expired, got %s", reloadedStale.Status)
	}
	if reloadedStale.ExpiredAt == nil {
		t.Fatalf("expected expired_at to be set")
	}

	var reloadedFresh models.Referral
	if err := db.First(&reloadedFresh, fresh.ID).Error; err != nil {
		t.Fatalf("reload fresh referral failed: %v", err)
	}
	if reloadedFresh.Status != constants.ReferralStatusPending {
		t.Fatalf("expected fresh referral still pending, got %s", reloadedFresh.Status)
	}
}
