package constants

// 站点状态常量
const (
	ArtifactStatusDraft     = "draft"
	ArtifactStatusBuilding  = "building"
	ArtifactStatusActive    = "active"
	ArtifactStatusFeatured  = "featured"
	ArtifactStatusViral     = "viral"
	ArtifactStatusSuspended = "suspended"
)

// 订阅等级常量
const (
	SubscriptionTierFree       = "free"
	SubscriptionTierPro        = "pro"
	SubscriptionTierBusiness   = "business"
	SubscriptionTierEnterprise = "enterprise"
)

// 账户状态常量
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// 分享平台常量
const (
	SharePlatformTwitter    = "twitter"
	SharePlatformLinkedin   = "linkedin"
	SharePlatformFacebook   = "facebook"
	SharePlatformEmail      = "email"
	SharePlatformCopyLink   = "copy_link"
	SharePlatformReddit     = "reddit"
	SharePlatformHackernews = "hackernews"
	SharePlatformDiscord    = "discord"
	SharePlatformSlack      = "slack"
)

// 支持的分享平台（封闭集合，入口校验使用）
var SupportedSharePlatforms = []string{
	SharePlatformTwitter,
	SharePlatformLinkedin,
	SharePlatformFacebook,
	SharePlatformEmail,
	SharePlatformCopyLink,
	SharePlatformReddit,
	SharePlatformHackernews,
	SharePlatformDiscord,
	SharePlatformSlack,
}

// 推荐关系状态常量
const (
	ReferralStatusPending   = "pending"
	ReferralStatusActivated = "activated"
	ReferralStatusConverted = "converted"
	ReferralStatusExpired   = "expired"
	ReferralStatusChurned   = "churned"
)

// 佣金台账状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusAvailable = "available"
	CommissionStatusPaid      = "paid"
	CommissionStatusRejected  = "rejected"
)

// 展示位加成档位常量（由低到高）
const (
	BoostTierBronze   = "bronze"
	BoostTierSilver   = "silver"
	BoostTierGold     = "gold"
	BoostTierPlatinum = "platinum"
	BoostTierViral    = "viral"
)

// 自动精选阈值默认值（外部分享次数）
const (
	DefaultFeatureThreshold = 5
)

// 分享事件默认加成权重
const (
	DefaultShareBoostWeight = 1.0
)

// 内部服务调用方常量
const (
	ServiceCallerPlatform  = "platform"
	ServiceCallerBilling   = "billing"
	ServiceCallerAnalytics = "analytics"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonAdminDisabled      = "admin_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 队列常量
const (
	QueueDefault        = "default"
	TaskShowcaseRefresh = "showcase:refresh"
	TaskArtifactRescore = "artifact:rescore"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "swg"
)

// 设置键常量
const (
	SettingKeySiteConfig       = "site_config"
	SettingKeyGrowthConfig     = "growth_config"
	SettingKeyCommissionConfig = "commission_config"
	SettingKeyShowcaseConfig   = "showcase_config"
	SettingKeyCaptchaConfig    = "captcha_config"
	SettingKeyDashboardConfig  = "dashboard_config"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}
