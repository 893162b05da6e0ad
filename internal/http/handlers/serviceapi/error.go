package serviceapi

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/sitewave-growth/internal/http/handlers/shared"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// handlerErrorRule 业务错误到响应码与 i18n 词条的映射
type handlerErrorRule struct {
	target error
	code   int
	key    string
}

// respondMappedError 逐条匹配规则表；未命中的错误走 fallback 并连原始错误一起记日志
func respondMappedError(c *gin.Context, err error, rules []handlerErrorRule, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if !errors.Is(err, rule.target) {
			continue
		}
		respondError(c, rule.code, rule.key, nil)
		return
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func mergeErrorRules(groups ...[]handlerErrorRule) []handlerErrorRule {
	var merged []handlerErrorRule
	for _, group := range groups {
		merged = append(merged, group...)
	}
	return merged
}

var accountErrorRules = []handlerErrorRule{
	{target: service.ErrAccountNotFound, code: response.CodeNotFound, key: "error.account_not_found"},
	{target: service.ErrAccountDisabled, code: response.CodeBadRequest, key: "error.account_disabled"},
	{target: service.ErrAccountExists, code: response.CodeBadRequest, key: "error.account_exists"},
	{target: service.ErrAccountEmailInvalid, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrAccountTierInvalid, code: response.CodeBadRequest, key: "error.bad_request"},
}

var artifactErrorRules = []handlerErrorRule{
	{target: service.ErrArtifactNotFound, code: response.CodeNotFound, key: "error.artifact_not_found"},
	{target: service.ErrArtifactSuspended, code: response.CodeBadRequest, key: "error.artifact_suspended"},
	{target: service.ErrArtifactStatusInvalid, code: response.CodeBadRequest, key: "error.artifact_status_invalid"},
	{target: service.ErrArtifactSlugExists, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrEngagementRegressed, code: response.CodeBadRequest, key: "error.engagement_regressed"},
}

var referralErrorRules = []handlerErrorRule{
	{target: service.ErrReferralNotFound, code: response.CodeNotFound, key: "error.referral_not_found"},
	{target: service.ErrReferralExists, code: response.CodeBadRequest, key: "error.referral_exists"},
	{target: service.ErrReferralSelf, code: response.CodeBadRequest, key: "error.referral_self"},
	{target: service.ErrReferralEmailInvalid, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrReferralStatusInvalid, code: response.CodeBadRequest, key: "error.referral_status_invalid"},
}

var commissionErrorRules = []handlerErrorRule{
	{target: service.ErrCommissionDuplicate, code: response.CodeBadRequest, key: "error.commission_duplicate"},
	{target: service.ErrCommissionNotFound, code: response.CodeNotFound, key: "error.commission_not_found"},
	{target: service.ErrCommissionAmountInvalid, code: response.CodeBadRequest, key: "error.commission_amount_invalid"},
	{target: service.ErrCommissionPeriodInvalid, code: response.CodeBadRequest, key: "error.commission_period_invalid"},
	{target: service.ErrCommissionStatusInvalid, code: response.CodeBadRequest, key: "error.commission_status_invalid"},
}

func parsePathUint(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(key))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
