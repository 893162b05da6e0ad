package service

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	artifactTitleMaxRuneSize = 200
	artifactSlugMaxRuneSize  = 120
	artifactTagsMaxCount     = 20
)

// ArtifactService 站点生命周期与计分服务
type ArtifactService struct {
	repo           repository.ArtifactRepository
	accountRepo    repository.AccountRepository
	shareEventRepo repository.ShareEventRepository
	showcaseRepo   repository.ShowcaseRepository
	settingService *SettingService
	queueClient    *queue.Client
}

// NewArtifactService 创建站点服务
func NewArtifactService(
	repo repository.ArtifactRepository,
	accountRepo repository.AccountRepository,
	shareEventRepo repository.ShareEventRepository,
	showcaseRepo repository.ShowcaseRepository,
	settingService *SettingService,
	queueClient *queue.Client,
) *ArtifactService {
	return &ArtifactService{
		repo:           repo,
		accountRepo:    accountRepo,
		shareEventRepo: shareEventRepo,
		showcaseRepo:   showcaseRepo,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// CreateArtifactInput 创建站点入参
type CreateArtifactInput struct {
	OwnerAccountID uint
	Title          string
	Slug           string
	Tags           []string
}

// EngagementInput 互动计数摄入入参（绝对值快照）
type EngagementInput struct {
	ArtifactID uint
	Pageviews  int64
	Likes      int64
	Comments   int64
}

// Create 创建站点（初始 draft 状态，病毒分为零）
func (s *ArtifactService) Create(input CreateArtifactInput) (*models.Artifact, error) {
	if s.repo == nil || s.accountRepo == nil {
		return nil, ErrNotFound
	}

	owner, err := s.accountRepo.GetByID(input.OwnerAccountID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}
	if owner.Status != constants.AccountStatusActive {
		return nil, ErrAccountDisabled
	}

	title := normalizeSettingTextWithRuneLimit(input.Title, artifactTitleMaxRuneSize)
	slug := normalizeArtifactSlug(input.Slug)
	if slug == "" {
		slug = normalizeArtifactSlug(title)
	}
	if slug == "" {
		slug = shortArtifactSuffix()
	}

	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrArtifactSlugExists
	}

	artifact := models.Artifact{
		PublicID:         uuid.New().String(),
		OwnerAccountID:   owner.ID,
		Title:            title,
		Slug:             slug,
		TagsJSON:         normalizeArtifactTags(input.Tags),
		Status:           constants.ArtifactStatusDraft,
		ShowcaseEligible: true,
	}
	if err := s.repo.Create(&artifact); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrArtifactSlugExists
		}
		return nil, err
	}
	return &artifact, nil
}

// MarkBuilding 站点进入构建中（生成流水线回调）
func (s *ArtifactService) MarkBuilding(id uint) (*models.Artifact, error) {
	return s.transition(id, []string{constants.ArtifactStatusDraft}, constants.ArtifactStatusBuilding)
}

// Publish 站点上线（draft/building → active），并排期首个衰减换档重算
func (s *ArtifactService) Publish(id uint) (*models.Artifact, error) {
	artifact, err := s.transition(id, []string{
		constants.ArtifactStatusDraft,
		constants.ArtifactStatusBuilding,
	}, constants.ArtifactStatusActive)
	if err != nil {
		return nil, err
	}
	s.scheduleDecayRescore(artifact)
	return artifact, nil
}

// Suspend 下架站点：清除展示位资格并删除展示位条目，同一事务内完成
func (s *ArtifactService) Suspend(id uint, reason string) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}

	var suspended *models.Artifact
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		showcaseTx := s.showcaseRepo.WithTx(tx)

		artifact, err := repoTx.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}
		if artifact.Status == constants.ArtifactStatusSuspended {
			return ErrArtifactStatusInvalid
		}

		now := time.Now()
		artifact.Status = constants.ArtifactStatusSuspended
		artifact.ShowcaseEligible = false
		artifact.SuspendedAt = &now
		artifact.SuspendReason = normalizeSettingTextWithRuneLimit(reason, 255)
		if err := repoTx.Update(artifact); err != nil {
			return err
		}
		if err := showcaseTx.DeleteByArtifactID(artifact.ID); err != nil {
			return err
		}
		suspended = artifact
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueShowcaseRefresh("artifact_suspended")
	return suspended, nil
}

// Unsuspend 恢复站点：auto_featured 站点回到 featured，其余回到 active
func (s *ArtifactService) Unsuspend(id uint) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}

	var restored *models.Artifact
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		artifact, err := repoTx.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}
		if artifact.Status != constants.ArtifactStatusSuspended {
			return ErrArtifactStatusInvalid
		}

		if artifact.AutoFeatured {
			artifact.Status = constants.ArtifactStatusFeatured
		} else {
			artifact.Status = constants.ArtifactStatusActive
		}
		artifact.ShowcaseEligible = true
		artifact.SuspendedAt = nil
		artifact.SuspendReason = ""
		if err := repoTx.Update(artifact); err != nil {
			return err
		}
		restored = artifact
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueShowcaseRefresh("artifact_unsuspended")
	return restored, nil
}

// IngestEngagement 摄入互动计数快照：计数单调不减，随后在同一事务内重算病毒分
func (s *ArtifactService) IngestEngagement(input EngagementInput) (*models.Artifact, *ScoreBreakdown, error) {
	if s.repo == nil {
		return nil, nil, ErrArtifactNotFound
	}
	if input.Pageviews < 0 || input.Likes < 0 || input.Comments < 0 {
		return nil, nil, ErrEngagementRegressed
	}

	setting, err := s.settingService.GetGrowthSetting()
	if err != nil {
		return nil, nil, err
	}
	calc := NewScoreCalculator(setting)

	var updated *models.Artifact
	var breakdown ScoreBreakdown
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		shareTx := s.shareEventRepo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)

		artifact, err := repoTx.GetByIDForUpdate(input.ArtifactID)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}
		if input.Pageviews < artifact.Pageviews || input.Likes < artifact.Likes || input.Comments < artifact.Comments {
			return ErrEngagementRegressed
		}

		artifact.Pageviews = input.Pageviews
		artifact.Likes = input.Likes
		artifact.Comments = input.Comments

		boosts, err := shareTx.SumBoostByPlatform(artifact.ID)
		if err != nil {
			return err
		}
		tier, err := resolveOwnerTier(accountTx, artifact.OwnerAccountID)
		if err != nil {
			return err
		}

		breakdown = calc.Compute(buildArtifactScoreInput(artifact, tier, boosts), time.Now())
		artifact.ViralScore = breakdown.Total
		if err := repoTx.Update(artifact); err != nil {
			return err
		}
		updated = artifact
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, &breakdown, nil
}

// ComputeViralScore 按当前计数即时计算病毒分（只读，不落库）
func (s *ArtifactService) ComputeViralScore(artifactID uint) (*ScoreBreakdown, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}

	artifact, err := s.repo.GetByID(artifactID)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, ErrArtifactNotFound
	}

	setting, err := s.settingService.GetGrowthSetting()
	if err != nil {
		return nil, err
	}
	boosts, err := s.shareEventRepo.SumBoostByPlatform(artifact.ID)
	if err != nil {
		return nil, err
	}
	tier, err := resolveOwnerTier(s.accountRepo, artifact.OwnerAccountID)
	if err != nil {
		return nil, err
	}

	calc := NewScoreCalculator(setting)
	breakdown := calc.Compute(buildArtifactScoreInput(artifact, tier, boosts), time.Now())
	return &breakdown, nil
}

// Rescore 重算并落库病毒分（衰减换档与周期刷新任务使用）
func (s *ArtifactService) Rescore(artifactID uint) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}

	setting, err := s.settingService.GetGrowthSetting()
	if err != nil {
		return nil, err
	}
	calc := NewScoreCalculator(setting)

	var updated *models.Artifact
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		shareTx := s.shareEventRepo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)

		artifact, err := repoTx.GetByIDForUpdate(artifactID)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}

		boosts, err := shareTx.SumBoostByPlatform(artifact.ID)
		if err != nil {
			return err
		}
		tier, err := resolveOwnerTier(accountTx, artifact.OwnerAccountID)
		if err != nil {
			return err
		}

		breakdown := calc.Compute(buildArtifactScoreInput(artifact, tier, boosts), time.Now())
		artifact.ViralScore = breakdown.Total
		if err := repoTx.Update(artifact); err != nil {
			return err
		}
		updated = artifact
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleDecayRescore(updated)
	return updated, nil
}

// RescoreBatch 按批重算活跃站点，返回游标与处理数量（周期刷新任务使用）
func (s *ArtifactService) RescoreBatch(afterID uint) (uint, int, error) {
	if s.repo == nil {
		return afterID, 0, nil
	}

	setting, err := s.settingService.GetGrowthSetting()
	if err != nil {
		return afterID, 0, err
	}

	ids, err := s.repo.ListIDsForRescore(setting.RescoreBatchSize, afterID)
	if err != nil {
		return afterID, 0, err
	}

	processed := 0
	cursor := afterID
	for _, id := range ids {
		if _, err := s.Rescore(id); err != nil {
			return cursor, processed, err
		}
		cursor = id
		processed++
	}
	return cursor, processed, nil
}

// GetByID 获取站点详情
func (s *ArtifactService) GetByID(id uint) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}
	artifact, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, ErrArtifactNotFound
	}
	return artifact, nil
}

// GetByPublicID 按对外标识获取站点
func (s *ArtifactService) GetByPublicID(publicID string) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}
	artifact, err := s.repo.GetByPublicID(strings.TrimSpace(publicID))
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, ErrArtifactNotFound
	}
	return artifact, nil
}

// GetBySlug 按短标识获取站点
func (s *ArtifactService) GetBySlug(slug string) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}
	artifact, err := s.repo.GetBySlug(normalizeArtifactSlug(slug))
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, ErrArtifactNotFound
	}
	return artifact, nil
}

// ListAdmin 获取后台站点列表
func (s *ArtifactService) ListAdmin(filter repository.ArtifactListFilter) ([]models.Artifact, int64, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.List(filter)
}

// transition 执行一次受限状态流转
// 行锁内读改写，避免覆盖并发分享落账的计数与评分
func (s *ArtifactService) transition(id uint, from []string, to string) (*models.Artifact, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}

	var updated *models.Artifact
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		artifact, err := repoTx.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}

		allowed := false
		for _, status := range from {
			if artifact.Status == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrArtifactStatusInvalid
		}

		artifact.Status = to
		if err := repoTx.Update(artifact); err != nil {
			return err
		}
		updated = artifact
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// scheduleDecayRescore 在下一次衰减换档时刻排期重算（读配置失败时按默认档位排期）
func (s *ArtifactService) scheduleDecayRescore(artifact *models.Artifact) {
	if artifact == nil || !s.queueClient.Enabled() {
		return
	}
	setting, _ := s.settingService.GetGrowthSetting()
	boundary := NewScoreCalculator(setting).NextDecayBoundary(artifact.CreatedAt, time.Now())
	if boundary == nil {
		return
	}
	_ = s.queueClient.EnqueueArtifactRescoreIn(queue.ArtifactRescorePayload{ArtifactID: artifact.ID}, time.Until(*boundary))
}

func (s *ArtifactService) enqueueShowcaseRefresh(reason string) {
	if !s.queueClient.Enabled() {
		return
	}
	_ = s.queueClient.EnqueueShowcaseRefresh(queue.ShowcaseRefreshPayload{Reason: reason})
}

func resolveOwnerTier(accountRepo repository.AccountRepository, ownerID uint) (string, error) {
	owner, err := accountRepo.GetByID(ownerID)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return constants.SubscriptionTierFree, nil
	}
	return owner.SubscriptionTier, nil
}

// normalizeArtifactSlug 归一化短标识：小写，非字母数字折叠为连字符
func normalizeArtifactSlug(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	var builder strings.Builder
	builder.Grow(len(raw))
	lastDash := true
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(builder.String(), "-")
	runes := []rune(slug)
	if len(runes) > artifactSlugMaxRuneSize {
		slug = string(runes[:artifactSlugMaxRuneSize])
		slug = strings.Trim(slug, "-")
	}
	return slug
}

func normalizeArtifactTags(tags []string) models.StringArray {
	result := make(models.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, exists := seen[tag]; exists {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
		if len(result) >= artifactTagsMaxCount {
			break
		}
	}
	return result
}

func shortArtifactSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
