package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码不符合要求")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrAdminDisabled      = errors.New("管理员已被禁用")
	ErrConfigInvalid      = errors.New("配置无效")
	ErrQueueUnavailable   = errors.New("队列服务不可用")
)

// 验证码错误
var (
	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaVerifyFailed  = errors.New("验证码校验失败")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
)

// 账户错误
var (
	ErrAccountNotFound     = errors.New("账户不存在")
	ErrAccountDisabled     = errors.New("账户已被禁用")
	ErrAccountExists       = errors.New("账户已存在")
	ErrAccountEmailInvalid = errors.New("账户邮箱无效")
	ErrAccountTierInvalid  = errors.New("订阅等级无效")
)

// 站点错误
var (
	ErrArtifactNotFound      = errors.New("站点不存在")
	ErrArtifactSuspended     = errors.New("站点已下架")
	ErrArtifactStatusInvalid = errors.New("站点状态不允许该操作")
	ErrArtifactSlugExists    = errors.New("站点短标识已存在")
	ErrEngagementRegressed   = errors.New("互动计数不允许回退")
)

// 分享错误
var (
	ErrSharePlatformInvalid = errors.New("不支持的分享平台")
)

// 推荐关系错误
var (
	ErrReferralNotFound      = errors.New("推荐关系不存在")
	ErrReferralExists        = errors.New("推荐关系已存在")
	ErrReferralSelf          = errors.New("不允许推荐自己")
	ErrReferralEmailInvalid  = errors.New("被推荐邮箱无效")
	ErrReferralStatusInvalid = errors.New("推荐状态不允许该操作")
)

// 佣金台账错误
var (
	ErrCommissionDuplicate     = errors.New("该账期佣金已入账")
	ErrCommissionNotFound      = errors.New("佣金台账条目不存在")
	ErrCommissionAmountInvalid = errors.New("佣金金额无效")
	ErrCommissionPeriodInvalid = errors.New("佣金账期无效")
	ErrCommissionStatusInvalid = errors.New("佣金状态不允许该操作")
)

// 配置校验错误
var (
	ErrGrowthConfigInvalid     = errors.New("增长配置无效")
	ErrCommissionConfigInvalid = errors.New("佣金配置无效")
	ErrShowcaseConfigInvalid   = errors.New("展示位配置无效")
	ErrDashboardRangeInvalid   = errors.New("仪表盘时间范围无效")
)
