package main

import (
	"log"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/provider"
	"github.com/sitewave-growth/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
	stdLog := logger.StdLogger()

	if err := openDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认超级管理员（admin / admin123，首次登录后应立即改密）
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 走完整服务层种数据，保证病毒分、计数与展示位都来自真实计算路径
	c := provider.NewContainer(cfg)

	// 演示账户（覆盖全部订阅等级）
	demoAccounts := []struct {
		Email       string
		DisplayName string
		Tier        string
	}{
		{"ivy@nova.dev", "Ivy Chen", constants.SubscriptionTierPro},
		{"leo@saaslabs.io", "Leo Martins", constants.SubscriptionTierBusiness},
		{"mia@freemail.app", "Mia Ortiz", constants.SubscriptionTierFree},
		{"noah@orbit.example", "Noah Weiss", constants.SubscriptionTierEnterprise},
		{"zoe@makerspace.cc", "Zoe Tanaka", constants.SubscriptionTierFree},
	}

	accounts := map[string]*models.Account{}
	for _, item := range demoAccounts {
		var existing models.Account
		if err := models.DB.Where("email = ?", item.Email).First(&existing).Error; err == nil {
			accounts[item.Email] = &existing
			stdLog.Printf("Account already exists: %s", item.Email)
			continue
		}
		account, err := c.AccountService.Register(service.RegisterAccountInput{
			Email:            item.Email,
			DisplayName:      item.DisplayName,
			SubscriptionTier: item.Tier,
		})
		if err != nil {
			stdLog.Printf("Failed to create account %s: %v", item.Email, err)
			continue
		}
		accounts[item.Email] = account
		stdLog.Printf("Created account: %s (%s)", item.Email, item.Tier)
	}

	ivy := accounts["ivy@nova.dev"]
	leo := accounts["leo@saaslabs.io"]
	mia := accounts["mia@freemail.app"]
	noah := accounts["noah@orbit.example"]
	zoe := accounts["zoe@makerspace.cc"]
	if ivy == nil || leo == nil || mia == nil || noah == nil || zoe == nil {
		stdLog.Fatalf("Seed accounts incomplete, aborting")
	}

	// 演示站点：发布后回填创建时间，让时间衰减档位有区分度
	type demoShare struct {
		Platform string
		Actor    *uint
	}
	demoArtifacts := []struct {
		Slug      string
		Title     string
		Owner     *models.Account
		Tags      []string
		AgeDays   int
		Pageviews int64
		Likes     int64
		Comments  int64
		Shares    []demoShare
	}{
		{
			Slug:      "aurora-landing",
			Title:     "Aurora - AI Landing Page Studio",
			Owner:     ivy,
			Tags:      []string{"landing", "ai", "startup"},
			AgeDays:   20,
			Pageviews: 4200,
			Likes:     96,
			Comments:  31,
			Shares: []demoShare{
				{constants.SharePlatformHackernews, &leo.ID},
				{constants.SharePlatformReddit, &leo.ID},
				{constants.SharePlatformTwitter, &mia.ID},
				{constants.SharePlatformLinkedin, nil},
				{constants.SharePlatformEmail, &mia.ID},
				{constants.SharePlatformCopyLink, nil},
			},
		},
		{
			Slug:      "atlas-docs",
			Title:     "Atlas - Developer Docs Portal",
			Owner:     leo,
			Tags:      []string{"docs", "developer"},
			AgeDays:   45,
			Pageviews: 1650,
			Likes:     28,
			Comments:  9,
			Shares: []demoShare{
				{constants.SharePlatformTwitter, &ivy.ID},
				{constants.SharePlatformSlack, nil},
			},
		},
		{
			Slug:      "pixel-portfolio",
			Title:     "Pixel - Photography Portfolio",
			Owner:     zoe,
			Tags:      []string{"portfolio", "photography"},
			AgeDays:   3,
			Pageviews: 310,
			Likes:     12,
			Comments:  4,
			Shares: []demoShare{
				{constants.SharePlatformCopyLink, &zoe.ID},
			},
		},
	}

	for _, item := range demoArtifacts {
		var existing models.Artifact
		if err := models.DB.Where("slug = ?", item.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Artifact already exists: %s", item.Slug)
			continue
		}

		artifact, err := c.ArtifactService.Create(service.CreateArtifactInput{
			OwnerAccountID: item.Owner.ID,
			Title:          item.Title,
			Slug:           item.Slug,
			Tags:           item.Tags,
		})
		if err != nil {
			stdLog.Printf("Failed to create artifact %s: %v", item.Slug, err)
			continue
		}
		if _, err := c.ArtifactService.MarkBuilding(artifact.ID); err != nil {
			stdLog.Printf("Failed to mark artifact building %s: %v", item.Slug, err)
			continue
		}
		if _, err := c.ArtifactService.Publish(artifact.ID); err != nil {
			stdLog.Printf("Failed to publish artifact %s: %v", item.Slug, err)
			continue
		}

		// 回填站点年龄（衰减基准），再摄入互动与分享，分数按真实年龄计算
		if item.AgeDays > 0 {
			createdAt := time.Now().AddDate(0, 0, -item.AgeDays)
			if err := models.DB.Model(&models.Artifact{}).Where("id = ?", artifact.ID).
				Update("created_at", createdAt).Error; err != nil {
				stdLog.Printf("Failed to backdate artifact %s: %v", item.Slug, err)
			}
		}

		if _, _, err := c.ArtifactService.IngestEngagement(service.EngagementInput{
			ArtifactID: artifact.ID,
			Pageviews:  item.Pageviews,
			Likes:      item.Likes,
			Comments:   item.Comments,
		}); err != nil {
			stdLog.Printf("Failed to ingest engagement for %s: %v", item.Slug, err)
		}

		for _, share := range item.Shares {
			if _, err := c.ShareService.RecordShare(service.RecordShareInput{
				ArtifactID:     artifact.ID,
				Platform:       share.Platform,
				TargetURL:      "https://" + item.Slug + ".sitewave.app",
				ActorAccountID: share.Actor,
			}); err != nil {
				stdLog.Printf("Failed to record %s share for %s: %v", share.Platform, item.Slug, err)
			}
		}
		stdLog.Printf("Created artifact: %s (%d shares)", item.Slug, len(item.Shares))
	}

	// 推荐关系：一条已转化（佣金演示）、一条已激活、一条待激活
	seedConvertedReferral(c, stdLog, ivy, mia)

	var leoNoah models.Referral
	if err := models.DB.Where("referrer_account_id = ? AND referred_email = ?", leo.ID, noah.Email).
		First(&leoNoah).Error; err != nil {
		referral, err := c.ReferralService.Create(service.CreateReferralInput{
			ReferrerAccountID: leo.ID,
			ReferredEmail:     noah.Email,
		})
		if err != nil {
			stdLog.Printf("Failed to create referral leo -> noah: %v", err)
		} else if _, err := c.ReferralService.Activate(referral.ReferralCode, noah.ID); err != nil {
			stdLog.Printf("Failed to activate referral leo -> noah: %v", err)
		} else {
			stdLog.Printf("Created activated referral: %s -> %s", leo.Email, noah.Email)
		}
	} else {
		stdLog.Printf("Referral already exists: %s -> %s", leo.Email, noah.Email)
	}

	var ivyPending models.Referral
	pendingEmail := "designer.friend@inbox.example"
	if err := models.DB.Where("referrer_account_id = ? AND referred_email = ?", ivy.ID, pendingEmail).
		First(&ivyPending).Error; err != nil {
		if _, err := c.ReferralService.Create(service.CreateReferralInput{
			ReferrerAccountID: ivy.ID,
			ReferredEmail:     pendingEmail,
		}); err != nil {
			stdLog.Printf("Failed to create pending referral: %v", err)
		} else {
			stdLog.Printf("Created pending referral: %s -> %s", ivy.Email, pendingEmail)
		}
	} else {
		stdLog.Printf("Referral already exists: %s -> %s", ivy.Email, pendingEmail)
	}

	// 展示位重建（写入 display_order）
	if total, err := c.ShowcaseService.Rebuild(); err != nil {
		stdLog.Printf("Failed to rebuild showcase: %v", err)
	} else {
		stdLog.Printf("Showcase rebuilt: %d entries", total)
	}

	// 站点配置
	configData := map[string]interface{}{
		"brand": map[string]interface{}{
			"site_name": "SiteWave",
		},
		"contact": map[string]interface{}{
			"support_email": "support@sitewave.app",
			"docs_url":      "https://docs.sitewave.app",
		},
	}

	var setting models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeySiteConfig).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       constants.SettingKeySiteConfig,
			ValueJSON: models.JSON(configData),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create site config: %v", err)
		} else {
			stdLog.Println("Created site config")
		}
	} else {
		setting.ValueJSON = models.JSON(configData)
		if err := models.DB.Save(&setting).Error; err != nil {
			stdLog.Printf("Failed to update site config: %v", err)
		} else {
			stdLog.Println("Updated site config")
		}
	}

	stdLog.Println("Seed completed")
}

// seedConvertedReferral 造一条三个月前激活、上月转化的推荐，并记入首笔佣金
func seedConvertedReferral(c *provider.Container, stdLog *log.Logger, referrer, referred *models.Account) {
	var existing models.Referral
	if err := models.DB.Where("referrer_account_id = ? AND referred_email = ?", referrer.ID, referred.Email).
		First(&existing).Error; err == nil {
		stdLog.Printf("Referral already exists: %s -> %s", referrer.Email, referred.Email)
		return
	}

	referral, err := c.ReferralService.Create(service.CreateReferralInput{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     referred.Email,
	})
	if err != nil {
		stdLog.Printf("Failed to create referral %s -> %s: %v", referrer.Email, referred.Email, err)
		return
	}
	if _, err := c.ReferralService.Activate(referral.ReferralCode, referred.ID); err != nil {
		stdLog.Printf("Failed to activate referral %s -> %s: %v", referrer.Email, referred.Email, err)
		return
	}

	// 激活时间回拨三个月，佣金月数从激活起算
	activatedAt := time.Now().AddDate(0, -3, 0)
	if err := models.DB.Model(&models.Referral{}).Where("id = ?", referral.ID).
		Update("activated_at", activatedAt).Error; err != nil {
		stdLog.Printf("Failed to backdate referral activation: %v", err)
	}
	if err := models.DB.Model(&models.Account{}).Where("id = ?", referrer.ID).
		Update("commission_start_at", activatedAt).Error; err != nil {
		stdLog.Printf("Failed to backdate commission start: %v", err)
	}

	// 被推荐账户升级为 pro 并标记转化
	if _, err := c.AccountService.UpdateTier(referred.ID, constants.SubscriptionTierPro); err != nil {
		stdLog.Printf("Failed to upgrade referred account tier: %v", err)
	}
	subscriptionAmount := decimal.NewFromFloat(29.00)
	if _, err := c.ReferralService.Convert(service.ConvertReferralInput{
		ReferralID:       referral.ID,
		SubscriptionTier: constants.SubscriptionTierPro,
		ConversionValue:  subscriptionAmount,
	}); err != nil {
		stdLog.Printf("Failed to convert referral %s -> %s: %v", referrer.Email, referred.Email, err)
		return
	}
	stdLog.Printf("Created converted referral: %s -> %s", referrer.Email, referred.Email)

	// 上一自然月账期的首笔佣金
	now := time.Now().UTC()
	periodEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodStart := periodEnd.AddDate(0, -1, 0)
	entry, err := c.CommissionService.RecordCommission(service.RecordCommissionInput{
		ReferralID:         referral.ID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		SubscriptionAmount: subscriptionAmount,
	})
	if err != nil {
		stdLog.Printf("Failed to record commission: %v", err)
		return
	}
	stdLog.Printf("Created commission entry: referral %d amount %s", referral.ID, entry.CommissionAmount.String())
}

func openDatabase(cfg *config.Config) error {
	return models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
}
