package worker

import (
	"context"
	"errors"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	commissionConfirmInterval = time.Minute
	referralExpiryInterval    = time.Hour
)

// Service 增长任务的后台消费进程，挂着 asynq 服务器与各周期循环
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	switch {
	case cfg == nil || !cfg.Enabled:
		return nil, errors.New("queue disabled")
	case consumer == nil:
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	svc := &Service{
		server:   asynq.NewServer(opt, serverCfg),
		mux:      asynq.NewServeMux(),
		consumer: consumer,
	}
	consumer.Register(svc.mux)
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费与周期循环，阻塞到 asynq 服务器退出
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if consumer := s.consumer; consumer != nil {
		if consumer.CommissionService != nil {
			go s.runCommissionConfirmLoop(ctx)
		}
		if consumer.ReferralService != nil {
			go s.runReferralExpiryLoop(ctx)
		}
		if consumer.ArtifactService != nil && consumer.SettingService != nil {
			go s.runRescoreSweepLoop(ctx)
		}
		if consumer.ShowcaseService != nil && consumer.SettingService != nil {
			go s.runShowcaseRefreshLoop(ctx)
		}
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(context.Context) error {
	if s != nil && s.server != nil {
		s.server.Shutdown()
	}
	return nil
}

// tickLoop 先立即跑一次，之后按固定间隔循环直到 ctx 取消
func tickLoop(ctx context.Context, interval time.Duration, runOnce func()) {
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runCommissionConfirmLoop 周期推进确认期已满的佣金（pending → available）
func (s *Service) runCommissionConfirmLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CommissionService == nil {
		return
	}
	tickLoop(ctx, commissionConfirmInterval, func() {
		confirmed, err := s.consumer.CommissionService.ConfirmDue()
		if err != nil {
			logger.Warnw("worker_commission_confirm_due_failed", "error", err)
			return
		}
		if confirmed > 0 {
			logger.Infow("worker_commission_confirm_due_done", "confirmed", confirmed)
		}
	})
}

// runReferralExpiryLoop 周期过期超龄的 pending 邀请
func (s *Service) runReferralExpiryLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ReferralService == nil {
		return
	}
	tickLoop(ctx, referralExpiryInterval, func() {
		expired, err := s.consumer.ReferralService.ExpireStale()
		if err != nil {
			logger.Warnw("worker_referral_expire_stale_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_referral_expire_stale_done", "expired", expired)
		}
	})
}

// runRescoreSweepLoop 按配置的间隔刷新活跃站点的衰减分
// 间隔每轮重读，后台调整后下一轮生效
func (s *Service) runRescoreSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ArtifactService == nil {
		return
	}
	for {
		interval := time.Hour
		if setting, err := s.consumer.SettingService.GetGrowthSetting(); err == nil {
			interval = time.Duration(setting.RescoreIntervalMinutes) * time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		s.runRescoreSweep()
	}
}

func (s *Service) runRescoreSweep() {
	var cursor uint
	total := 0
	for {
		next, processed, err := s.consumer.ArtifactService.RescoreBatch(cursor)
		if err != nil {
			logger.Warnw("worker_artifact_rescore_sweep_failed", "cursor", cursor, "error", err)
			return
		}
		total += processed
		if processed == 0 {
			break
		}
		cursor = next
	}
	if total > 0 {
		logger.Infow("worker_artifact_rescore_sweep_done", "rescored", total)
	}
}

// runShowcaseRefreshLoop 按配置的间隔重建展示位排行
func (s *Service) runShowcaseRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ShowcaseService == nil {
		return
	}
	for {
		interval := 15 * time.Minute
		if setting, err := s.consumer.SettingService.GetShowcaseSetting(); err == nil {
			interval = time.Duration(setting.RefreshIntervalMinutes) * time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		total, err := s.consumer.ShowcaseService.Rebuild()
		if err != nil {
			logger.Warnw("worker_showcase_periodic_refresh_failed", "error", err)
			continue
		}
		logger.Debugw("worker_showcase_periodic_refresh_done", "entries", total)
	}
}
