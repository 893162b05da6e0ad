package service

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"

	"github.com/google/uuid"
)

const accountDisplayNameMaxRuneSize = 64

// AccountService 平台账户服务
// 账户本体由外部用户体系管理，这里维护增长侧镜像：注册同步、订阅等级、
// 启停状态与累计统计。
type AccountService struct {
	repo           repository.AccountRepository
	artifactRepo   repository.ArtifactRepository
	queueClient    *queue.Client
	settingService *SettingService
}

// NewAccountService 创建账户服务
func NewAccountService(
	repo repository.AccountRepository,
	artifactRepo repository.ArtifactRepository,
	queueClient *queue.Client,
	settingService *SettingService,
) *AccountService {
	return &AccountService{
		repo:           repo,
		artifactRepo:   artifactRepo,
		queueClient:    queueClient,
		settingService: settingService,
	}
}

// RegisterAccountInput 注册账户入参
type RegisterAccountInput struct {
	Email            string
	DisplayName      string
	SubscriptionTier string
}

// Register 注册账户镜像（平台侧回调），邮箱重复时拒绝
func (s *AccountService) Register(input RegisterAccountInput) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrAccountEmailInvalid
	}

	tier := strings.ToLower(strings.TrimSpace(input.SubscriptionTier))
	if tier == "" {
		tier = constants.SubscriptionTierFree
	}
	if !isSupportedSubscriptionTier(tier) {
		return nil, ErrAccountTierInvalid
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	account := &models.Account{
		PublicID:         uuid.New().String(),
		Email:            email,
		DisplayName:      normalizeSettingTextWithRuneLimit(input.DisplayName, accountDisplayNameMaxRuneSize),
		SubscriptionTier: tier,
		Status:           constants.AccountStatusActive,
	}
	if err := s.repo.Create(account); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return account, nil
}

// GetByID 根据ID获取账户
func (s *AccountService) GetByID(id uint) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}
	account, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetByPublicID 根据平台侧标识获取账户
func (s *AccountService) GetByPublicID(publicID string) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}
	account, err := s.repo.GetByPublicID(strings.TrimSpace(publicID))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetByEmail 根据邮箱获取账户
func (s *AccountService) GetByEmail(email string) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}
	account, err := s.repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// List 查询账户列表
func (s *AccountService) List(filter repository.AccountListFilter) ([]models.Account, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrAccountNotFound
	}
	return s.repo.List(filter)
}

// UpdateTier 变更订阅等级，等级乘数变化后排队重算名下站点
func (s *AccountService) UpdateTier(id uint, tier string) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}

	normalized := strings.ToLower(strings.TrimSpace(tier))
	if !isSupportedSubscriptionTier(normalized) {
		return nil, ErrAccountTierInvalid
	}

	account, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account.SubscriptionTier == normalized {
		return account, nil
	}

	account.SubscriptionTier = normalized
	if err := s.repo.Update(account); err != nil {
		return nil, err
	}
	s.enqueueOwnerRescore(account.ID)
	return account, nil
}

// Disable 禁用账户（幂等，重复禁用不报错）
func (s *AccountService) Disable(id uint) (*models.Account, error) {
	return s.setStatus(id, constants.AccountStatusDisabled)
}

// Enable 启用账户（幂等，重复启用不报错）
func (s *AccountService) Enable(id uint) (*models.Account, error) {
	return s.setStatus(id, constants.AccountStatusActive)
}

func (s *AccountService) setStatus(id uint, status string) (*models.Account, error) {
	if s.repo == nil {
		return nil, ErrAccountNotFound
	}
	account, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account.Status == status {
		return account, nil
	}

	var disabledAt *time.Time
	if status == constants.AccountStatusDisabled {
		now := time.Now()
		disabledAt = &now
	}
	if err := s.repo.UpdateStatus(id, status, disabledAt); err != nil {
		return nil, err
	}
	account.Status = status
	account.DisabledAt = disabledAt
	return account, nil
}

// enqueueOwnerRescore 为账户名下全部站点排队重算
func (s *AccountService) enqueueOwnerRescore(accountID uint) {
	if s.artifactRepo == nil || !s.queueClient.Enabled() {
		return
	}
	artifacts, _, err := s.artifactRepo.List(repository.ArtifactListFilter{OwnerAccountID: accountID})
	if err != nil {
		return
	}
	for i := range artifacts {
		_ = s.queueClient.EnqueueArtifactRescore(queue.ArtifactRescorePayload{ArtifactID: artifacts[i].ID})
	}
}
