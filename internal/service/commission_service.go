package service

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 佣金台账服务
type CommissionService struct {
	repo           repository.CommissionRepository
	referralRepo   repository.ReferralRepository
	accountRepo    repository.AccountRepository
	settingService *SettingService
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	repo repository.CommissionRepository,
	referralRepo repository.ReferralRepository,
	accountRepo repository.AccountRepository,
	settingService *SettingService,
) *CommissionService {
	return &CommissionService{
		repo:           repo,
		referralRepo:   referralRepo,
		accountRepo:    accountRepo,
		settingService: settingService,
	}
}

// RecordCommissionInput 佣金入账入参
type RecordCommissionInput struct {
	ReferralID         uint
	PeriodStart        time.Time
	PeriodEnd          time.Time
	SubscriptionAmount decimal.Decimal
}

// CommissionSummary 受益账户佣金汇总
type CommissionSummary struct {
	Pending   models.Money `json:"pending"`
	Available models.Money `json:"available"`
	Paid      models.Money `json:"paid"`
	Lifetime  models.Money `json:"lifetime"`
}

// ResolveCommissionRate 按关系月数解析佣金费率，月数为负时拒绝
func (s *CommissionService) ResolveCommissionRate(relationshipMonths int) (decimal.Decimal, error) {
	if relationshipMonths < 0 {
		return decimal.Zero, ErrCommissionPeriodInvalid
	}
	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return decimal.Zero, err
	}
	return setting.RateForMonths(relationshipMonths), nil
}

// RecordCommission 记录账期佣金：关系月数按激活时间到账期起点计算，
// 同一推荐关系同一账期至多一条，重复入账直接拒绝。
func (s *CommissionService) RecordCommission(input RecordCommissionInput) (*models.CommissionLedgerEntry, error) {
	if s.repo == nil || s.referralRepo == nil {
		return nil, ErrCommissionNotFound
	}
	if input.SubscriptionAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCommissionAmountInvalid
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() || !input.PeriodEnd.After(input.PeriodStart) {
		return nil, ErrCommissionPeriodInvalid
	}

	referral, err := s.referralRepo.GetByID(input.ReferralID)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, ErrReferralNotFound
	}
	if referral.Status != constants.ReferralStatusConverted {
		return nil, ErrReferralStatusInvalid
	}
	if referral.ActivatedAt == nil {
		return nil, ErrReferralStatusInvalid
	}
	if input.PeriodStart.Before(*referral.ActivatedAt) {
		return nil, ErrCommissionPeriodInvalid
	}

	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return nil, err
	}

	months := relationshipMonths(*referral.ActivatedAt, input.PeriodStart)
	rate := setting.RateForMonths(months)
	subscriptionAmount := models.NewMoneyFromDecimal(input.SubscriptionAmount)
	commissionAmount := subscriptionAmount.MulRate(rate)

	existing, err := s.repo.GetByReferralAndPeriod(referral.ID, input.PeriodStart)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCommissionDuplicate
	}

	now := time.Now()
	entry := models.CommissionLedgerEntry{
		ReferralID:           referral.ID,
		BeneficiaryAccountID: referral.ReferrerAccountID,
		PeriodStart:          input.PeriodStart,
		PeriodEnd:            input.PeriodEnd,
		SubscriptionAmount:   subscriptionAmount,
		CommissionRate:       models.NewMoneyFromDecimal(rate),
		RelationshipMonths:   months,
		CommissionAmount:     commissionAmount,
		Status:               constants.CommissionStatusPending,
	}
	if setting.ConfirmDays > 0 {
		confirmAt := now.AddDate(0, 0, setting.ConfirmDays)
		entry.ConfirmAt = &confirmAt
	} else {
		entry.Status = constants.CommissionStatusAvailable
		entry.AvailableAt = &now
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)

		if err := repoTx.Create(&entry); err != nil {
			// 并发账期写入由唯一索引兜底，统一回报重复入账
			if isUniqueViolation(err) {
				return ErrCommissionDuplicate
			}
			return err
		}
		return accountTx.AddLifetimeCommission(entry.BeneficiaryAccountID, commissionAmount.Decimal)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ConfirmDue 批量将确认期已到的佣金置为可结算，返回受影响条数
func (s *CommissionService) ConfirmDue() (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.ConfirmDueEntries(time.Now())
}

// MarkPaid 标记佣金已结算（结算动作本身由外部系统执行）
func (s *CommissionService) MarkPaid(entryID uint) (*models.CommissionLedgerEntry, error) {
	if s.repo == nil {
		return nil, ErrCommissionNotFound
	}

	var paid *models.CommissionLedgerEntry
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		locked, err := repoTx.GetByIDForUpdate(entryID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrCommissionNotFound
		}
		if locked.Status != constants.CommissionStatusAvailable {
			return ErrCommissionStatusInvalid
		}

		now := time.Now()
		locked.Status = constants.CommissionStatusPaid
		locked.PaidAt = &now
		if err := repoTx.Update(locked); err != nil {
			return err
		}

		paid = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// Reject 驳回佣金条目并回冲受益账户累计佣金
func (s *CommissionService) Reject(entryID uint, reason string) (*models.CommissionLedgerEntry, error) {
	if s.repo == nil {
		return nil, ErrCommissionNotFound
	}

	var rejected *models.CommissionLedgerEntry
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)

		locked, err := repoTx.GetByIDForUpdate(entryID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrCommissionNotFound
		}
		if locked.Status != constants.CommissionStatusPending && locked.Status != constants.CommissionStatusAvailable {
			return ErrCommissionStatusInvalid
		}

		locked.Status = constants.CommissionStatusRejected
		locked.RejectReason = normalizeSettingTextWithRuneLimit(reason, 255)
		if err := repoTx.Update(locked); err != nil {
			return err
		}
		if err := accountTx.AddLifetimeCommission(locked.BeneficiaryAccountID, locked.CommissionAmount.Decimal.Neg()); err != nil {
			return err
		}

		rejected = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// GetByID 获取台账条目详情
func (s *CommissionService) GetByID(id uint) (*models.CommissionLedgerEntry, error) {
	if s.repo == nil {
		return nil, ErrCommissionNotFound
	}
	entry, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrCommissionNotFound
	}
	return entry, nil
}

// ListAdmin 获取后台台账列表
func (s *CommissionService) ListAdmin(filter repository.CommissionListFilter) ([]models.CommissionLedgerEntry, int64, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.List(filter)
}

// SummaryForAccount 汇总受益账户各状态的佣金金额
func (s *CommissionService) SummaryForAccount(accountID uint) (*CommissionSummary, error) {
	if s.repo == nil {
		return nil, ErrCommissionNotFound
	}

	pending, err := s.repo.SumAmountByBeneficiary(accountID, []string{constants.CommissionStatusPending})
	if err != nil {
		return nil, err
	}
	available, err := s.repo.SumAmountByBeneficiary(accountID, []string{constants.CommissionStatusAvailable})
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.SumAmountByBeneficiary(accountID, []string{constants.CommissionStatusPaid})
	if err != nil {
		return nil, err
	}
	lifetime, err := s.repo.SumAmountByBeneficiary(accountID, []string{
		constants.CommissionStatusPending,
		constants.CommissionStatusAvailable,
		constants.CommissionStatusPaid,
	})
	if err != nil {
		return nil, err
	}

	return &CommissionSummary{
		Pending:   pending,
		Available: available,
		Paid:      paid,
		Lifetime:  lifetime,
	}, nil
}

// relationshipMonths 计算激活时间到账期起点之间的完整日历月数
func relationshipMonths(activatedAt, periodStart time.Time) int {
	months := (periodStart.Year()-activatedAt.Year())*12 + int(periodStart.Month()-activatedAt.Month())
	if periodStart.Day() < activatedAt.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
