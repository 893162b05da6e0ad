package service

import (
	"context"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"

	"gorm.io/gorm"
)

const (
	showcasePageSizeDefault = 20
	showcasePageSizeMax     = 100
)

// ShowcaseService 展示位排名服务
type ShowcaseService struct {
	repo           repository.ShowcaseRepository
	artifactRepo   repository.ArtifactRepository
	settingService *SettingService
	queueClient    *queue.Client
}

// NewShowcaseService 创建展示位服务
func NewShowcaseService(
	repo repository.ShowcaseRepository,
	artifactRepo repository.ArtifactRepository,
	settingService *SettingService,
	queueClient *queue.Client,
) *ShowcaseService {
	return &ShowcaseService{
		repo:           repo,
		artifactRepo:   artifactRepo,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// showcasePage 展示位分页缓存载荷
type showcasePage struct {
	Entries []models.ShowcaseEntry `json:"entries"`
	Total   int64                  `json:"total"`
}

// Rebuild 整体重建展示位排名，返回重建后的条目数。
// 候选站点按病毒分降序、同分按精选时间升序取出；达到 viral 阈值的精选站点
// 晋升为 viral，跌破阈值的 viral 站点回落为 featured，状态变更与条目重建
// 在同一事务内完成。
func (s *ShowcaseService) Rebuild() (int, error) {
	if s.repo == nil || s.artifactRepo == nil {
		return 0, ErrArtifactNotFound
	}

	setting, err := s.settingService.GetShowcaseSetting()
	if err != nil {
		return 0, err
	}

	var total int
	err = s.artifactRepo.Transaction(func(tx *gorm.DB) error {
		artifactTx := s.artifactRepo.WithTx(tx)
		showcaseTx := s.repo.WithTx(tx)

		candidates, err := artifactTx.ListShowcaseCandidates()
		if err != nil {
			return err
		}

		entries := make([]models.ShowcaseEntry, 0, len(candidates))
		for i := range candidates {
			artifact := &candidates[i]
			score := artifact.ViralScore.Decimal

			status := artifact.Status
			if status == constants.ArtifactStatusFeatured && setting.PromotesToViral(score) {
				status = constants.ArtifactStatusViral
			} else if status == constants.ArtifactStatusViral && !setting.PromotesToViral(score) {
				status = constants.ArtifactStatusFeatured
			}
			if status != artifact.Status {
				artifact.Status = status
				if err := artifactTx.Update(artifact); err != nil {
					return err
				}
			}

			if len(entries) >= setting.MaxEntries {
				continue
			}
			featuredAt := artifact.CreatedAt
			if artifact.FeaturedAt != nil {
				featuredAt = *artifact.FeaturedAt
			}
			entries = append(entries, models.ShowcaseEntry{
				ArtifactID:         artifact.ID,
				AccountID:          artifact.OwnerAccountID,
				ScoreSnapshot:      artifact.ViralScore,
				ShareCountSnapshot: artifact.ExternalShareCount,
				BoostTier:          setting.BandForEntry(status, score),
				DisplayOrder:       len(entries) + 1,
				FeaturedAt:         featuredAt,
			})
		}

		if err := showcaseTx.ReplaceAll(entries); err != nil {
			return err
		}
		total = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidatePageCache()
	return total, nil
}

// List 查询展示位列表，公开分页走版本号缓存，带账户过滤的查询直连数据库
func (s *ShowcaseService) List(ctx context.Context, filter repository.ShowcaseListFilter) ([]models.ShowcaseEntry, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrArtifactNotFound
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = showcasePageSizeDefault
	}
	if filter.PageSize > showcasePageSizeMax {
		filter.PageSize = showcasePageSizeMax
	}
	filter.BoostTier = strings.ToLower(strings.TrimSpace(filter.BoostTier))

	setting, err := s.settingService.GetShowcaseSetting()
	if err != nil {
		return nil, 0, err
	}

	cacheable := cache.Enabled() && setting.CacheTTLSeconds > 0 &&
		filter.AccountID == 0 && filter.WithArtifact
	if !cacheable {
		return s.repo.List(filter)
	}

	version := cache.ShowcaseVersion(ctx)
	key := cache.ShowcasePageKey(version, filter.BoostTier, filter.Page, filter.PageSize)

	var page showcasePage
	if hit, err := cache.GetShowcasePage(ctx, key, &page); err == nil && hit {
		return page.Entries, page.Total, nil
	}

	entries, totalCount, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	page = showcasePage{Entries: entries, Total: totalCount}
	_ = cache.SetShowcasePage(ctx, key, page, time.Duration(setting.CacheTTLSeconds)*time.Second)
	return entries, totalCount, nil
}

// GetByArtifact 查询站点当前的展示位条目，未入位时返回空
func (s *ShowcaseService) GetByArtifact(artifactID uint) (*models.ShowcaseEntry, error) {
	if s.repo == nil {
		return nil, ErrArtifactNotFound
	}
	return s.repo.GetByArtifactID(artifactID)
}

// RequestRefresh 请求一次展示位重排：队列可用时异步执行，否则同步重建
func (s *ShowcaseService) RequestRefresh(reason string) error {
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueShowcaseRefresh(queue.ShowcaseRefreshPayload{Reason: reason})
	}
	_, err := s.Rebuild()
	return err
}

func (s *ShowcaseService) invalidatePageCache() {
	if !cache.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = cache.BumpShowcaseVersion(ctx)
}
