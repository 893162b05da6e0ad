package provider

import (
	"gorm.io/gorm"

	"github.com/sitewave-growth/internal/authz"
	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/repository"
	"github.com/sitewave-growth/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	AccountRepo       repository.AccountRepository
	ArtifactRepo      repository.ArtifactRepository
	ShareEventRepo    repository.ShareEventRepository
	ReferralRepo      repository.ReferralRepository
	CommissionRepo    repository.CommissionRepository
	ShowcaseRepo      repository.ShowcaseRepository
	SettingRepo       repository.SettingRepository
	AdminLoginLogRepo repository.AdminLoginLogRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository
	DashboardRepo     repository.DashboardRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	CaptchaService       *service.CaptchaService
	SettingService       *service.SettingService
	AccountService       *service.AccountService
	ArtifactService      *service.ArtifactService
	ShareService         *service.ShareService
	ReferralService      *service.ReferralService
	CommissionService    *service.CommissionService
	ShowcaseService      *service.ShowcaseService
	AdminLoginLogService *service.AdminLoginLogService
	AuthzAuditService    *service.AuthzAuditService
	DashboardService     *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// Redis 不可用时缓存退化为直通，不阻塞启动
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg, QueueClient: newQueueClient(&cfg.Queue)}
	c.initRepositories()
	c.initServices()
	return c
}

// newQueueClient 队列关闭或初始化失败时返回 nil，投递方按未启用处理
func newQueueClient(cfg *config.QueueConfig) *queue.Client {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	client, err := queue.NewClient(cfg)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		return nil
	}
	return client
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.AccountRepo = repository.NewAccountRepository(db)
	c.ArtifactRepo = repository.NewArtifactRepository(db)
	c.ShareEventRepo = repository.NewShareEventRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.ShowcaseRepo = repository.NewShowcaseRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AdminLoginLogRepo = repository.NewAdminLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.AuthzService = mustInitAuthz(models.DB)

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.refreshCaptchaConfig()

	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AccountService = service.NewAccountService(c.AccountRepo, c.ArtifactRepo, c.QueueClient, c.SettingService)
	c.ArtifactService = service.NewArtifactService(c.ArtifactRepo, c.AccountRepo, c.ShareEventRepo, c.ShowcaseRepo, c.SettingService, c.QueueClient)
	c.ShareService = service.NewShareService(c.ArtifactRepo, c.AccountRepo, c.ShareEventRepo, c.ShowcaseRepo, c.SettingService, c.QueueClient)
	c.ReferralService = service.NewReferralService(c.ReferralRepo, c.AccountRepo, c.SettingService)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.ReferralRepo, c.AccountRepo, c.SettingService)
	c.ShowcaseService = service.NewShowcaseService(c.ShowcaseRepo, c.ArtifactRepo, c.SettingService, c.QueueClient)
	c.AdminLoginLogService = service.NewAdminLoginLogService(c.AdminLoginLogRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.SettingService)
}

// mustInitAuthz 权限后端起不来直接终止进程，带病运行会放大授权风险
func mustInitAuthz(db *gorm.DB) *authz.Service {
	svc, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	if err := svc.SeedBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	return svc
}

// refreshCaptchaConfig 启动时用 settings 表里的验证码配置覆盖静态默认值
func (c *Container) refreshCaptchaConfig() {
	captchaSetting, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha)
	if err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
		return
	}
	c.Config.Captcha = service.CaptchaSettingToConfig(captchaSetting)
}
