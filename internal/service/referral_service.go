package service

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const referralCodeLength = 10

// ReferralService 推荐关系生命周期服务
type ReferralService struct {
	repo           repository.ReferralRepository
	accountRepo    repository.AccountRepository
	settingService *SettingService
}

// NewReferralService 创建推荐服务
func NewReferralService(repo repository.ReferralRepository, accountRepo repository.AccountRepository, settingService *SettingService) *ReferralService {
	return &ReferralService{
		repo:           repo,
		accountRepo:    accountRepo,
		settingService: settingService,
	}
}

// CreateReferralInput 创建推荐邀请入参
type CreateReferralInput struct {
	ReferrerAccountID uint
	ReferredEmail     string
}

// ConvertReferralInput 转化入参
type ConvertReferralInput struct {
	ReferralID       uint
	SubscriptionTier string
	ConversionValue  decimal.Decimal
}

// Create 创建推荐邀请：同一推荐人对同一邮箱唯一，禁止自我推荐
func (s *ReferralService) Create(input CreateReferralInput) (*models.Referral, error) {
	if s.repo == nil || s.accountRepo == nil {
		return nil, ErrReferralNotFound
	}

	email := strings.ToLower(strings.TrimSpace(input.ReferredEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrReferralEmailInvalid
	}

	referrer, err := s.accountRepo.GetByID(input.ReferrerAccountID)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrAccountNotFound
	}
	if referrer.Status != constants.AccountStatusActive {
		return nil, ErrAccountDisabled
	}
	if strings.EqualFold(referrer.Email, email) {
		return nil, ErrReferralSelf
	}

	existing, err := s.repo.GetByPair(referrer.ID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReferralExists
	}

	code, err := generateReferralCode()
	if err != nil {
		return nil, err
	}

	referral := models.Referral{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     email,
		ReferralCode:      code,
		Status:            constants.ReferralStatusPending,
	}
	if err := s.repo.Create(&referral); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReferralExists
		}
		return nil, err
	}
	return &referral, nil
}

// Activate 激活推荐：绑定被推荐账户并盖章激活时间（佣金计月起点）
func (s *ReferralService) Activate(code string, referredAccountID uint) (*models.Referral, error) {
	if s.repo == nil || s.accountRepo == nil {
		return nil, ErrReferralNotFound
	}

	referral, err := s.repo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, ErrReferralNotFound
	}

	account, err := s.accountRepo.GetByID(referredAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.ID == referral.ReferrerAccountID {
		return nil, ErrReferralSelf
	}

	var activated *models.Referral
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)

		locked, err := repoTx.GetByIDForUpdate(referral.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrReferralNotFound
		}
		if locked.Status != constants.ReferralStatusPending {
			return ErrReferralStatusInvalid
		}

		now := time.Now()
		locked.Status = constants.ReferralStatusActivated
		locked.ReferredAccountID = &account.ID
		locked.ActivatedAt = &now
		if err := repoTx.Update(locked); err != nil {
			return err
		}

		// 推荐人首次促成激活时记录佣金关系起点
		referrer, err := accountTx.GetByIDForUpdate(locked.ReferrerAccountID)
		if err != nil {
			return err
		}
		if referrer != nil && referrer.CommissionStartAt == nil {
			referrer.CommissionStartAt = &now
			if err := accountTx.Update(referrer); err != nil {
				return err
			}
		}

		activated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

// Convert 转化推荐：盖章转化等级与订阅金额
func (s *ReferralService) Convert(input ConvertReferralInput) (*models.Referral, error) {
	if s.repo == nil {
		return nil, ErrReferralNotFound
	}
	if !isSupportedSubscriptionTier(input.SubscriptionTier) {
		return nil, ErrAccountTierInvalid
	}

	var converted *models.Referral
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		locked, err := repoTx.GetByIDForUpdate(input.ReferralID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrReferralNotFound
		}
		if locked.Status != constants.ReferralStatusActivated {
			return ErrReferralStatusInvalid
		}

		now := time.Now()
		locked.Status = constants.ReferralStatusConverted
		locked.ConversionTier = input.SubscriptionTier
		locked.ConversionValue = models.NewMoneyFromDecimal(input.ConversionValue)
		locked.ConvertedAt = &now
		if err := repoTx.Update(locked); err != nil {
			return err
		}

		converted = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converted, nil
}

// Churn 标记流失：已转化的推荐关系走到终态
func (s *ReferralService) Churn(referralID uint) (*models.Referral, error) {
	if s.repo == nil {
		return nil, ErrReferralNotFound
	}

	var churned *models.Referral
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		locked, err := repoTx.GetByIDForUpdate(referralID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrReferralNotFound
		}
		if locked.Status != constants.ReferralStatusConverted {
			return ErrReferralStatusInvalid
		}

		now := time.Now()
		locked.Status = constants.ReferralStatusChurned
		locked.ChurnedAt = &now
		if err := repoTx.Update(locked); err != nil {
			return err
		}

		churned = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return churned, nil
}

// ExpireStale 批量过期超龄的 pending 邀请，返回受影响条数
func (s *ReferralService) ExpireStale() (int64, error) {
	if s.repo == nil {
		return 0, nil
	}

	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -setting.ReferralExpiryDays)
	return s.repo.ExpireStalePending(cutoff, now)
}

// GetByID 获取推荐关系详情
func (s *ReferralService) GetByID(id uint) (*models.Referral, error) {
	if s.repo == nil {
		return nil, ErrReferralNotFound
	}
	referral, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, ErrReferralNotFound
	}
	return referral, nil
}

// GetByReferredAccount 按被推荐账户查询推荐关系
func (s *ReferralService) GetByReferredAccount(accountID uint) (*models.Referral, error) {
	if s.repo == nil {
		return nil, ErrReferralNotFound
	}
	return s.repo.GetByReferredAccountID(accountID)
}

// ListAdmin 获取后台推荐列表
func (s *ReferralService) ListAdmin(filter repository.ReferralListFilter) ([]models.Referral, int64, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.List(filter)
}

// CountActiveByReferrer 统计推荐人名下仍在活跃链路中的推荐数
func (s *ReferralService) CountActiveByReferrer(referrerID uint) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.CountByReferrer(referrerID, []string{
		constants.ReferralStatusActivated,
		constants.ReferralStatusConverted,
	})
}

func isSupportedSubscriptionTier(tier string) bool {
	switch tier {
	case constants.SubscriptionTierFree,
		constants.SubscriptionTierPro,
		constants.SubscriptionTierBusiness,
		constants.SubscriptionTierEnterprise:
		return true
	default:
		return false
	}
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(referralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}
