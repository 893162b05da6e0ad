package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newCommissionServiceForTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()
	db := setupGrowthServiceTest(t, "commission_service_test")
	settingService := NewSettingService(repository.NewSettingRepository(db))
	svc := NewCommissionService(
		repository.NewCommissionRepository(db),
		repository.NewReferralRepository(db),
		repository.NewAccountRepository(db),
		settingService,
	)
	return svc, db
}

func createConvertedReferral(t *testing.T, db *gorm.DB, referrerID uint, activatedAt time.Time) *models.Referral {
	t.Helper()
	convertedAt := activatedAt.AddDate(0, 0, 7)
	referral := &models.Referral{
		ReferrerAccountID: referrerID,
		ReferredEmail:     fmt.Sprintf("referred_%d@example.com", time.Now().UnixNano()),
		ReferralCode:      fmt.Sprintf("CODE%06d", time.Now().UnixNano()%1000000),
		Status:            constants.ReferralStatusConverted,
		ConversionTier:    constants.SubscriptionTierPro,
		ConversionValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(29)),
		ActivatedAt:       &activatedAt,
		ConvertedAt:       &convertedAt,
	}
	if err := db.Create(referral).Error; err != nil {
		t.Fatalf("create converted referral failed: %v", err)
	}
	return referral
}

func TestRelationshipMonthsCalendar(t *testing.T) {
	activated := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		periodStart time.Time
		want        int
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 12},
		{time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), 13},
		{time.Date(2028, 1, 15, 0, 0, 0, 0, time.UTC), 48},
		{time.Date(2028, 2, 15, 0, 0, 0, 0, time.UTC), 49},
	}
	for _, tc := range cases {
		if got := relationshipMonths(activated, tc.periodStart); got != tc.want {
			t.Fatalf("months(%s) want %d got %d", tc.periodStart.Format("2006-01-02"), tc.want, got)
		}
	}
}

func TestRecordCommissionRateBrackets(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	activated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		periodStart time.Time
		wantRate    string
		wantMonths  int
	}{
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "0.20", 12},
		{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "0.25", 13},
		{time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC), "0.25", 48},
		{time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), "0.40", 49},
	}
	for _, tc := range cases {
		referral := createConvertedReferral(t, db, referrer.ID, activated)
		entry, err := svc.RecordCommission(RecordCommissionInput{
			ReferralID:         referral.ID,
			PeriodStart:        tc.periodStart,
			PeriodEnd:          tc.periodStart.AddDate(0, 1, 0),
			SubscriptionAmount: decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("record commission at %s failed: %v", tc.periodStart.Format("2006-01-02"), err)
		}
		if entry.CommissionRate.String() != tc.wantRate {
			t.Fatalf("period %s rate want %s got %s", tc.periodStart.Format("2006-01-02"), tc.wantRate, entry.CommissionRate.String())
		}
		if entry.RelationshipMonths != tc.wantMonths {
			t.Fatalf("period %s months want %d got %d", tc.periodStart.Format("2006-01-02"), tc.wantMonths, entry.RelationshipMonths)
		}
	}
}

func TestRecordCommissionComputesAmount(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	activated := time.Now().AddDate(0, -3, 0)
	referral := createConvertedReferral(t, db, referrer.ID, activated)

	periodStart := time.Now().AddDate(0, 0, -1)
	entry, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodStart.AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(29),
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}
	// 关系 3 个月内适用 0.20 费率
	if entry.CommissionAmount.String() != "5.80" {
		t.Fatalf("expected commission 5.80, got %s", entry.CommissionAmount.String())
	}
	if entry.Status != constants.CommissionStatusPending {
		t.Fatalf("expected status pending, got %s", entry.Status)
	}
	if entry.ConfirmAt == nil {
		t.Fatalf("expected confirm_at to be set")
	}

	var reloadedReferrer models.Account
	if err := db.First(&reloadedReferrer, referrer.ID).Error; err != nil {
		t.Fatalf("reload referrer failed: %v", err)
	}
	if reloadedReferrer.LifetimeCommission.String() != "5.80" {
		t.Fatalf("expected lifetime commission 5.80, got %s", reloadedReferrer.LifetimeCommission.String())
	}
}

func TestRecordCommissionDuplicatePeriodRejected(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referral := createConvertedReferral(t, db, referrer.ID, time.Now().AddDate(0, -2, 0))

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	input := RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodStart.AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(29),
	}
	if _, err := svc.RecordCommission(input); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if _, err := svc.RecordCommission(input); !errors.Is(err, ErrCommissionDuplicate) {
		t.Fatalf("expected ErrCommissionDuplicate, got %v", err)
	}

	var count int64
	if err := db.Model(&models.CommissionLedgerEntry{}).Where("referral_id = ?", referral.ID).Count(&count).Error; err != nil {
		t.Fatalf("count ledger entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", count)
	}
}

func TestRecordCommissionRequiresConvertedReferral(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referral := &models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     "pending@example.com",
		ReferralCode:      "PENDING123",
		Status:            constants.ReferralStatusPending,
	}
	if err := db.Create(referral).Error; err != nil {
		t.Fatalf("create pending referral failed: %v", err)
	}

	_, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        time.Now(),
		PeriodEnd:          time.Now().AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(29),
	})
	if !errors.Is(err, ErrReferralStatusInvalid) {
		t.Fatalf("expected ErrReferralStatusInvalid, got %v", err)
	}
}

func TestRecordCommissionPeriodBeforeActivation(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	activated := time.Now().AddDate(0, -1, 0)
	referral := createConvertedReferral(t, db, referrer.ID, activated)

	_, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        activated.AddDate(0, -1, 0),
		PeriodEnd:          activated,
		SubscriptionAmount: decimal.NewFromInt(29),
	})
	if !errors.Is(err, ErrCommissionPeriodInvalid) {
		t.Fatalf("expected ErrCommissionPeriodInvalid, got %v", err)
	}
}

func TestConfirmDueThenMarkPaid(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referral := createConvertedReferral(t, db, referrer.ID, time.Now().AddDate(0, -2, 0))

	periodStart := time.Now().AddDate(0, 0, -3)
	entry, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodStart.AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(29),
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}

	if _, err := svc.MarkPaid(entry.ID); !errors.Is(err, ErrCommissionStatusInvalid) {
		t.Fatalf("expected ErrCommissionStatusInvalid before confirmation, got %v", err)
	}

	affected, err := svc.ConfirmDue()
	if err != nil {
		t.Fatalf("confirm due failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected no entries due yet, got %d", affected)
	}

	// 回拨确认期，模拟确认窗口已过
	if err := db.Model(&models.CommissionLedgerEntry{}).Where("id = ?", entry.ID).
		Update("confirm_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate confirm_at failed: %v", err)
	}
	affected, err = svc.ConfirmDue()
	if err != nil {
		t.Fatalf("confirm due failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 entry confirmed, got %d", affected)
	}

	paid, err := svc.MarkPaid(entry.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.CommissionStatusPaid {
		t.Fatalf("expected status paid, got %s", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}
}

func TestRejectReversesLifetimeCommission(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referral := createConvertedReferral(t, db, referrer.ID, time.Now().AddDate(0, -2, 0))

	periodStart := time.Now().AddDate(0, 0, -3)
	entry, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodStart.AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(29),
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}

	rejected, err := svc.Reject(entry.ID, "chargeback")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.CommissionStatusRejected {
		t.Fatalf("expected status rejected, got %s", rejected.Status)
	}
	if rejected.RejectReason != "chargeback" {
		t.Fatalf("expected reject reason recorded, got %q", rejected.RejectReason)
	}

	var reloadedReferrer models.Account
	if err := db.First(&reloadedReferrer, referrer.ID).Error; err != nil {
		t.Fatalf("reload referrer failed: %v", err)
	}
	if reloadedReferrer.LifetimeCommission.String() != "0.00" {
		t.Fatalf("expected lifetime commission reversed to 0.00, got %s", reloadedReferrer.LifetimeCommission.String())
	}
}

func TestSummaryForAccountAggregatesStatuses(t *testing.T) {
	svc, db := newCommissionServiceForTest(t)
	referrer := createTestAccount(t, db, 1, constants.SubscriptionTierPro)
	referral := createConvertedReferral(t, db, referrer.ID, time.Now().AddDate(0, -2, 0))

	first := time.Now().AddDate(0, -1, 0)
	if _, err := svc.RecordCommission(RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        first,
		PeriodEnd:          first.AddDate(0, 1, 0),
		SubscriptionAmount: decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("record first commission failed: %v", err)
	}

	summary, err := svc.SummaryForAccount(referrer.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Pending.String() != "20.00" {
		t.Fatalf("expected pending 20.00, got %s", summary.Pending.String())
	}
	if summary.Lifetime.String() != "20.00" {
		t.Fatalf("expected lifetime 20.00, got %s", summary.Lifetime.String())
	}
	if summary.Available.String() != "0.00" {
		t.Fatalf("expected available 0.00, got %s", summary.Available.String())
	}
}
