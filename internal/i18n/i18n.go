package i18n

import (
	"fmt"
	"strings"

	"github.com/sitewave-growth/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认站点语言
const DefaultLocale = constants.LocaleZhCN

var catalogs = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":               "请求参数有误",
		"error.unauthorized":              "未登录或登录已失效",
		"error.forbidden":                 "没有权限执行该操作",
		"error.not_found":                 "资源不存在",
		"error.internal":                  "服务内部错误，请稍后再试",
		"error.auth_header_missing":       "缺少认证信息",
		"error.auth_header_invalid":       "认证信息格式有误",
		"error.token_invalid":             "登录凭证无效",
		"error.token_revoked":             "登录凭证已失效，请重新登录",
		"error.jwt_secret_missing":        "服务端认证配置缺失",
		"error.service_token_invalid":     "服务调用凭证无效",
		"error.login_too_many":            "登录过于频繁，请稍后再试",
		"error.rate_limited":              "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":    "限流服务暂不可用",
		"error.admin_disabled":            "管理员账号已被禁用",
		"error.captcha_required":          "请完成验证码校验",
		"error.captcha_invalid":           "验证码错误或已过期",
		"error.invalid_credentials":       "账号或密码错误",
		"error.account_not_found":         "账户不存在",
		"error.account_disabled":          "账户已被禁用",
		"error.account_exists":            "账户已存在",
		"error.artifact_not_found":        "站点不存在",
		"error.artifact_suspended":        "站点已被下架",
		"error.artifact_status_invalid":   "站点当前状态不允许该操作",
		"error.engagement_regressed":      "互动计数不允许回退",
		"error.share_platform_invalid":    "不支持的分享平台",
		"error.referral_not_found":        "推荐关系不存在",
		"error.referral_exists":           "该邮箱已被推荐过",
		"error.referral_self":             "不能推荐自己",
		"error.referral_status_invalid":   "推荐关系当前状态不允许该操作",
		"error.commission_duplicate":      "该账期佣金已入账",
		"error.commission_amount_invalid": "订阅金额必须大于 0",
		"error.commission_period_invalid": "账期区间无效",
		"error.commission_not_found":      "佣金记录不存在",
		"error.commission_status_invalid": "佣金记录当前状态不允许该操作",
		"error.setting_invalid":           "配置内容不合法",
		"error.password_min_length":       "密码长度不能少于 %d 位",
		"error.password_require_upper":    "密码必须包含大写字母",
		"error.password_require_lower":    "密码必须包含小写字母",
		"error.password_require_number":   "密码必须包含数字",
		"error.password_require_special":  "密码必须包含特殊字符",
		"error.password_invalid":          "旧密码不正确",
		"error.password_weak":             "密码强度不足",
		"error.login_failed":              "登录失败，请稍后再试",
		"error.save_failed":               "保存失败",
		"error.config_fetch_failed":       "配置获取失败",
		"error.settings_fetch_failed":     "设置获取失败",
		"error.settings_save_failed":      "设置保存失败",
		"error.dashboard_fetch_failed":    "仪表盘数据获取失败",
		"error.captcha_config_invalid":    "验证码配置无效",
		"error.captcha_verify_failed":     "验证码校验失败，请稍后再试",
		"error.captcha_unavailable":       "验证码服务不可用",
		"error.captcha_generate_failed":   "验证码生成失败",
		"error.admin_create_failed":       "管理员创建失败",
		"error.admin_update_failed":       "管理员更新失败",
		"error.admin_delete_failed":       "管理员删除失败",
		"error.admin_delete_self_forbidden": "不能删除当前登录的管理员",
		"error.admin_delete_protected":    "该管理员受保护，不能删除",
		"error.admin_disable_self_forbidden": "不能禁用当前登录的管理员",
		"error.admin_disable_protected":   "该管理员受保护，不能禁用",
		"error.authz_role_builtin":        "预置角色不允许删除",
		"error.admin_delete_last_forbidden": "不能删除最后一位管理员",
		"error.admin_id_invalid":          "管理员ID无效",
		"error.admin_id_type_invalid":     "管理员ID类型错误",
		"error.admin_username_invalid":    "管理员账号格式无效",
		"error.admin_username_exists":     "管理员账号已存在",
		"error.account_create_failed":     "账户创建失败",
		"error.account_fetch_failed":      "账户获取失败",
		"error.account_update_failed":     "账户更新失败",
		"error.artifact_create_failed":    "站点创建失败",
		"error.artifact_fetch_failed":     "站点获取失败",
		"error.artifact_update_failed":    "站点更新失败",
		"error.engagement_ingest_failed":  "互动数据摄入失败",
		"error.share_record_failed":       "分享记录失败",
		"error.share_event_fetch_failed":  "分享事件获取失败",
		"error.referral_create_failed":    "推荐创建失败",
		"error.referral_fetch_failed":     "推荐关系获取失败",
		"error.referral_update_failed":    "推荐状态更新失败",
		"error.commission_record_failed":  "佣金入账失败",
		"error.commission_fetch_failed":   "佣金记录获取失败",
		"error.commission_update_failed":  "佣金状态更新失败",
		"error.showcase_fetch_failed":     "展示位获取失败",
		"error.showcase_refresh_failed":   "展示位重排失败",
		"error.admin_login_log_fetch_failed": "登录日志获取失败",
	},
	constants.LocaleZhTW: {
		"error.bad_request":               "請求參數有誤",
		"error.unauthorized":              "未登入或登入已失效",
		"error.forbidden":                 "沒有權限執行該操作",
		"error.not_found":                 "資源不存在",
		"error.internal":                  "服務內部錯誤，請稍後再試",
		"error.auth_header_missing":       "缺少認證資訊",
		"error.auth_header_invalid":       "認證資訊格式有誤",
		"error.token_invalid":             "登入憑證無效",
		"error.token_revoked":             "登入憑證已失效，請重新登入",
		"error.jwt_secret_missing":        "服務端認證配置缺失",
		"error.service_token_invalid":     "服務調用憑證無效",
		"error.login_too_many":            "登入過於頻繁，請稍後再試",
		"error.rate_limited":              "請求過於頻繁，請 %d 秒後再試",
		"error.rate_limit_unavailable":    "限流服務暫不可用",
		"error.admin_disabled":            "管理員帳號已被禁用",
		"error.captcha_required":          "請完成驗證碼校驗",
		"error.captcha_invalid":           "驗證碼錯誤或已過期",
		"error.invalid_credentials":       "帳號或密碼錯誤",
		"error.account_not_found":         "帳戶不存在",
		"error.account_disabled":          "帳戶已被禁用",
		"error.account_exists":            "帳戶已存在",
		"error.artifact_not_found":        "站點不存在",
		"error.artifact_suspended":        "站點已被下架",
		"error.artifact_status_invalid":   "站點當前狀態不允許該操作",
		"error.engagement_regressed":      "互動計數不允許回退",
		"error.share_platform_invalid":    "不支援的分享平台",
		"error.referral_not_found":        "推薦關係不存在",
		"error.referral_exists":           "該郵箱已被推薦過",
		"error.referral_self":             "不能推薦自己",
		"error.referral_status_invalid":   "推薦關係當前狀態不允許該操作",
		"error.commission_duplicate":      "該帳期佣金已入帳",
		"error.commission_amount_invalid": "訂閱金額必須大於 0",
		"error.commission_period_invalid": "帳期區間無效",
		"error.commission_not_found":      "佣金記錄不存在",
		"error.commission_status_invalid": "佣金記錄當前狀態不允許該操作",
		"error.setting_invalid":           "配置內容不合法",
		"error.password_min_length":       "密碼長度不能少於 %d 位",
		"error.password_require_upper":    "密碼必須包含大寫字母",
		"error.password_require_lower":    "密碼必須包含小寫字母",
		"error.password_require_number":   "密碼必須包含數字",
		"error.password_require_special":  "密碼必須包含特殊字元",
		"error.password_invalid":          "舊密碼不正確",
		"error.password_weak":             "密碼強度不足",
		"error.login_failed":              "登入失敗，請稍後再試",
		"error.save_failed":               "儲存失敗",
		"error.config_fetch_failed":       "配置獲取失敗",
		"error.settings_fetch_failed":     "設定獲取失敗",
		"error.settings_save_failed":      "設定儲存失敗",
		"error.dashboard_fetch_failed":    "儀表板資料獲取失敗",
		"error.captcha_config_invalid":    "驗證碼配置無效",
		"error.captcha_verify_failed":     "驗證碼校驗失敗，請稍後再試",
		"error.captcha_unavailable":       "驗證碼服務不可用",
		"error.captcha_generate_failed":   "驗證碼生成失敗",
		"error.admin_create_failed":       "管理員建立失敗",
		"error.admin_update_failed":       "管理員更新失敗",
		"error.admin_delete_failed":       "管理員刪除失敗",
		"error.admin_delete_self_forbidden": "不能刪除當前登入的管理員",
		"error.admin_delete_protected":    "該管理員受保護，不能刪除",
		"error.admin_disable_self_forbidden": "不能禁用當前登入的管理員",
		"error.admin_disable_protected":   "該管理員受保護，不能禁用",
		"error.authz_role_builtin":        "預置角色不允許刪除",
		"error.admin_delete_last_forbidden": "不能刪除最後一位管理員",
		"error.admin_id_invalid":          "管理員ID無效",
		"error.admin_id_type_invalid":     "管理員ID類型錯誤",
		"error.admin_username_invalid":    "管理員帳號格式無效",
		"error.admin_username_exists":     "管理員帳號已存在",
		"error.account_create_failed":     "帳戶建立失敗",
		"error.account_fetch_failed":      "帳戶獲取失敗",
		"error.account_update_failed":     "帳戶更新失敗",
		"error.artifact_create_failed":    "站點建立失敗",
		"error.artifact_fetch_failed":     "站點獲取失敗",
		"error.artifact_update_failed":    "站點更新失敗",
		"error.engagement_ingest_failed":  "互動資料攝入失敗",
		"error.share_record_failed":       "分享記錄失敗",
		"error.share_event_fetch_failed":  "分享事件獲取失敗",
		"error.referral_create_failed":    "推薦建立失敗",
		"error.referral_fetch_failed":     "推薦關係獲取失敗",
		"error.referral_update_failed":    "推薦狀態更新失敗",
		"error.commission_record_failed":  "佣金入帳失敗",
		"error.commission_fetch_failed":   "佣金記錄獲取失敗",
		"error.commission_update_failed":  "佣金狀態更新失敗",
		"error.showcase_fetch_failed":     "展示位獲取失敗",
		"error.showcase_refresh_failed":   "展示位重排失敗",
		"error.admin_login_log_fetch_failed": "登入日誌獲取失敗",
	},
	constants.LocaleEnUS: {
		"error.bad_request":               "Invalid request parameters",
		"error.unauthorized":              "Not signed in or session expired",
		"error.forbidden":                 "You do not have permission to perform this action",
		"error.not_found":                 "Resource not found",
		"error.internal":                  "Internal server error, please try again later",
		"error.auth_header_missing":       "Missing authorization header",
		"error.auth_header_invalid":       "Malformed authorization header",
		"error.token_invalid":             "Invalid token",
		"error.token_revoked":             "Token revoked, please sign in again",
		"error.jwt_secret_missing":        "Server auth configuration missing",
		"error.service_token_invalid":     "Invalid service token",
		"error.login_too_many":            "Too many login attempts, please try again later",
		"error.rate_limited":              "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":    "Rate limiter temporarily unavailable",
		"error.admin_disabled":            "Admin account disabled",
		"error.captcha_required":          "Captcha verification required",
		"error.captcha_invalid":           "Captcha incorrect or expired",
		"error.invalid_credentials":       "Incorrect username or password",
		"error.account_not_found":         "Account not found",
		"error.account_disabled":          "Account disabled",
		"error.account_exists":            "Account already exists",
		"error.artifact_not_found":        "Site not found",
		"error.artifact_suspended":        "Site has been suspended",
		"error.artifact_status_invalid":   "Operation not allowed in the site's current status",
		"error.engagement_regressed":      "Engagement counters cannot regress",
		"error.share_platform_invalid":    "Unsupported share platform",
		"error.referral_not_found":        "Referral not found",
		"error.referral_exists":           "This email has already been referred",
		"error.referral_self":             "You cannot refer yourself",
		"error.referral_status_invalid":   "Operation not allowed in the referral's current status",
		"error.commission_duplicate":      "Commission already recorded for this billing period",
		"error.commission_amount_invalid": "Subscription amount must be greater than 0",
		"error.commission_period_invalid": "Invalid billing period",
		"error.commission_not_found":      "Commission entry not found",
		"error.commission_status_invalid": "Operation not allowed in the entry's current status",
		"error.setting_invalid":           "Invalid settings payload",
		"error.password_min_length":       "Password must be at least %d characters",
		"error.password_require_upper":    "Password must contain an uppercase letter",
		"error.password_require_lower":    "Password must contain a lowercase letter",
		"error.password_require_number":   "Password must contain a digit",
		"error.password_require_special":  "Password must contain a special character",
		"error.password_invalid":          "Current password is incorrect",
		"error.password_weak":             "Password is too weak",
		"error.login_failed":              "Login failed, please try again later",
		"error.save_failed":               "Save failed",
		"error.config_fetch_failed":       "Failed to fetch configuration",
		"error.settings_fetch_failed":     "Failed to fetch settings",
		"error.settings_save_failed":      "Failed to save settings",
		"error.dashboard_fetch_failed":    "Failed to fetch dashboard data",
		"error.captcha_config_invalid":    "Invalid captcha configuration",
		"error.captcha_verify_failed":     "Captcha verification failed, please try again later",
		"error.captcha_unavailable":       "Captcha service unavailable",
		"error.captcha_generate_failed":   "Failed to generate captcha",
		"error.admin_create_failed":       "Failed to create admin",
		"error.admin_update_failed":       "Failed to update admin",
		"error.admin_delete_failed":       "Failed to delete admin",
		"error.admin_delete_self_forbidden": "You cannot delete the currently signed-in admin",
		"error.admin_delete_protected":    "This admin is protected and cannot be deleted",
		"error.admin_disable_self_forbidden": "Cannot disable your own account",
		"error.admin_disable_protected":   "This admin is protected and cannot be disabled",
		"error.authz_role_builtin":        "Builtin role cannot be removed",
		"error.admin_delete_last_forbidden": "You cannot delete the last admin",
		"error.admin_id_invalid":          "Invalid admin ID",
		"error.admin_id_type_invalid":     "Invalid admin ID type",
		"error.admin_username_invalid":    "Invalid admin username",
		"error.admin_username_exists":     "Admin username already exists",
		"error.account_create_failed":     "Failed to create account",
		"error.account_fetch_failed":      "Failed to fetch account",
		"error.account_update_failed":     "Failed to update account",
		"error.artifact_create_failed":    "Failed to create site",
		"error.artifact_fetch_failed":     "Failed to fetch site",
		"error.artifact_update_failed":    "Failed to update site",
		"error.engagement_ingest_failed":  "Failed to ingest engagement data",
		"error.share_record_failed":       "Failed to record share",
		"error.share_event_fetch_failed":  "Failed to fetch share events",
		"error.referral_create_failed":    "Failed to create referral",
		"error.referral_fetch_failed":     "Failed to fetch referral",
		"error.referral_update_failed":    "Failed to update referral",
		"error.commission_record_failed":  "Failed to record commission",
		"error.commission_fetch_failed":   "Failed to fetch commission entries",
		"error.commission_update_failed":  "Failed to update commission entry",
		"error.showcase_fetch_failed":     "Failed to fetch showcase",
		"error.showcase_refresh_failed":   "Failed to refresh showcase",
		"error.admin_login_log_fetch_failed": "Failed to fetch login logs",
	},
}

// ResolveLocale 解析请求语言（query lang > Accept-Language > 默认）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := normalizeLocale(c.Query("lang")); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		lang := part
		if idx := strings.Index(lang, ";"); idx >= 0 {
			lang = lang[:idx]
		}
		if resolved := normalizeLocale(lang); resolved != "" {
			return resolved
		}
	}
	return DefaultLocale
}

func normalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, locale := range constants.SupportedLocales {
		if strings.EqualFold(trimmed, locale) {
			return locale
		}
	}
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "zh-tw"), strings.HasPrefix(lower, "zh-hant"), strings.HasPrefix(lower, "zh-hk"):
		return constants.LocaleZhTW
	case strings.HasPrefix(lower, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return constants.LocaleEnUS
	}
	return ""
}

// T 按语言查找文案，未命中按回退顺序取值，最终回退到 key 本身
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if text, ok := catalog[key]; ok {
			return text
		}
	}
	for _, fallback := range constants.SupportedLocales {
		if fallback == locale {
			continue
		}
		if text, ok := catalogs[fallback][key]; ok {
			return text
		}
	}
	return key
}

// Sprintf 按语言查找文案并格式化参数
func Sprintf(locale, key string, args ...interface{}) string {
	text := T(locale, key)
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
