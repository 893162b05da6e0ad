package service

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const shareTargetURLMaxRuneSize = 500

// ShareService 外部分享入账服务
type ShareService struct {
	artifactRepo   repository.ArtifactRepository
	accountRepo    repository.AccountRepository
	shareEventRepo repository.ShareEventRepository
	showcaseRepo   repository.ShowcaseRepository
	settingService *SettingService
	queueClient    *queue.Client
}

// NewShareService 创建分享服务
func NewShareService(
	artifactRepo repository.ArtifactRepository,
	accountRepo repository.AccountRepository,
	shareEventRepo repository.ShareEventRepository,
	showcaseRepo repository.ShowcaseRepository,
	settingService *SettingService,
	queueClient *queue.Client,
) *ShareService {
	return &ShareService{
		artifactRepo:   artifactRepo,
		accountRepo:    accountRepo,
		shareEventRepo: shareEventRepo,
		showcaseRepo:   showcaseRepo,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// RecordShareInput 分享入账入参
type RecordShareInput struct {
	ArtifactID     uint
	Platform       string
	TargetURL      string
	ActorAccountID *uint
	BoostWeight    *float64
	RequestID      string
}

// RecordShare 记录一次外部分享：事件落库、计数自增、病毒分重算与
// 自动精选判定在同一事务内完成；平台非法时直接拒绝，无任何副作用。
func (s *ShareService) RecordShare(input RecordShareInput) (*models.ShareEvent, error) {
	if s.artifactRepo == nil || s.shareEventRepo == nil {
		return nil, ErrArtifactNotFound
	}

	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if !isSupportedSharePlatform(platform) {
		return nil, ErrSharePlatformInvalid
	}

	growthSetting, err := s.settingService.GetGrowthSetting()
	if err != nil {
		return nil, err
	}
	showcaseSetting, err := s.settingService.GetShowcaseSetting()
	if err != nil {
		return nil, err
	}
	calc := NewScoreCalculator(growthSetting)

	boostWeight := decimal.NewFromFloat(growthSetting.DefaultBoostWeight)
	if input.BoostWeight != nil {
		override := *input.BoostWeight
		if override > 0 && override <= growthWeightMax {
			boostWeight = decimal.NewFromFloat(override)
		}
	}

	var actorID *uint
	if input.ActorAccountID != nil && *input.ActorAccountID > 0 {
		actor, err := s.accountRepo.GetByID(*input.ActorAccountID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, ErrAccountNotFound
		}
		if actor.Status != constants.AccountStatusActive {
			return nil, ErrAccountDisabled
		}
		actorID = &actor.ID
	}

	var event *models.ShareEvent
	featured := false
	err = s.artifactRepo.Transaction(func(tx *gorm.DB) error {
		artifactTx := s.artifactRepo.WithTx(tx)
		shareTx := s.shareEventRepo.WithTx(tx)
		accountTx := s.accountRepo.WithTx(tx)
		showcaseTx := s.showcaseRepo.WithTx(tx)

		artifact, err := artifactTx.GetByIDForUpdate(input.ArtifactID)
		if err != nil {
			return err
		}
		if artifact == nil {
			return ErrArtifactNotFound
		}
		if artifact.Status == constants.ArtifactStatusSuspended {
			return ErrArtifactSuspended
		}

		now := time.Now()
		created := models.ShareEvent{
			ArtifactID:     artifact.ID,
			ActorAccountID: actorID,
			Platform:       platform,
			PlatformWeight: models.NewScoreFromDecimal(calc.PlatformWeight(platform)),
			BoostWeight:    models.NewScoreFromDecimal(boostWeight),
			TargetURL:      normalizeSettingTextWithRuneLimit(input.TargetURL, shareTargetURLMaxRuneSize),
			RequestID:      strings.TrimSpace(input.RequestID),
		}
		if err := shareTx.Create(&created); err != nil {
			return err
		}

		artifact.ExternalShareCount++

		boosts, err := shareTx.SumBoostByPlatform(artifact.ID)
		if err != nil {
			return err
		}
		tier, err := resolveOwnerTier(accountTx, artifact.OwnerAccountID)
		if err != nil {
			return err
		}
		breakdown := calc.Compute(buildArtifactScoreInput(artifact, tier, boosts), now)
		artifact.ViralScore = breakdown.Total

		// 自动精选：阈值达成且从未精选过的 active 站点，恰好触发一次
		if !artifact.AutoFeatured &&
			artifact.Status == constants.ArtifactStatusActive &&
			artifact.ExternalShareCount >= int64(growthSetting.FeatureThreshold) {
			artifact.AutoFeatured = true
			artifact.Status = constants.ArtifactStatusFeatured
			artifact.FeaturedAt = &now

			existingEntries, err := showcaseTx.Count()
			if err != nil {
				return err
			}
			entry := models.ShowcaseEntry{
				ArtifactID:         artifact.ID,
				AccountID:          artifact.OwnerAccountID,
				ScoreSnapshot:      artifact.ViralScore,
				ShareCountSnapshot: artifact.ExternalShareCount,
				BoostTier:          showcaseSetting.BandForEntry(artifact.Status, artifact.ViralScore.Decimal),
				DisplayOrder:       int(existingEntries) + 1,
				FeaturedAt:         now,
			}
			if err := showcaseTx.Create(&entry); err != nil {
				return err
			}
			featured = true
		}

		if err := artifactTx.Update(artifact); err != nil {
			return err
		}

		if err := accountTx.IncrementSharesReceived(artifact.OwnerAccountID); err != nil {
			return err
		}
		if actorID != nil {
			if err := accountTx.IncrementActorShareStats(*actorID, boostWeight); err != nil {
				return err
			}
		}

		event = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if featured && s.queueClient.Enabled() {
		_ = s.queueClient.EnqueueShowcaseRefresh(queue.ShowcaseRefreshPayload{Reason: "auto_featured"})
	}
	return event, nil
}

// GetEvent 获取分享事件详情
func (s *ShareService) GetEvent(id uint) (*models.ShareEvent, error) {
	if s.shareEventRepo == nil {
		return nil, ErrNotFound
	}
	event, err := s.shareEventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}

// ListEvents 获取分享事件列表
func (s *ShareService) ListEvents(filter repository.ShareEventListFilter) ([]models.ShareEvent, int64, error) {
	if s.shareEventRepo == nil {
		return nil, 0, nil
	}
	return s.shareEventRepo.List(filter)
}

func isSupportedSharePlatform(platform string) bool {
	for _, supported := range constants.SupportedSharePlatforms {
		if platform == supported {
			return true
		}
	}
	return false
}
