package serviceapi

import (
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateReferralRequest 推荐邀请创建请求
type CreateReferralRequest struct {
	ReferrerAccountPublicID string `json:"referrer_account_public_id" binding:"required"`
	ReferredEmail           string `json:"referred_email" binding:"required"`
}

// ActivateReferralRequest 推荐激活请求
type ActivateReferralRequest struct {
	ReferralCode            string `json:"referral_code" binding:"required"`
	ReferredAccountPublicID string `json:"referred_account_public_id" binding:"required"`
}

// ConvertReferralRequest 推荐转化请求
type ConvertReferralRequest struct {
	SubscriptionTier string `json:"subscription_tier" binding:"required"`
	ConversionValue  string `json:"conversion_value" binding:"required"`
}

// CreateReferral 创建推荐邀请
func (h *Handler) CreateReferral(c *gin.Context) {
	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	referrer, err := h.AccountService.GetByPublicID(req.ReferrerAccountPublicID)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
		return
	}

	referral, err := h.ReferralService.Create(service.CreateReferralInput{
		ReferrerAccountID: referrer.ID,
		ReferredEmail:     req.ReferredEmail,
	})
	if err != nil {
		rules := mergeErrorRules(referralErrorRules, accountErrorRules)
		respondMappedError(c, err, rules, response.CodeInternal, "error.referral_create_failed")
		return
	}
	response.Success(c, referral)
}

// ActivateReferral 激活推荐（被推荐人注册后由平台侧回调）
func (h *Handler) ActivateReferral(c *gin.Context) {
	var req ActivateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	referred, err := h.AccountService.GetByPublicID(req.ReferredAccountPublicID)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
		return
	}

	referral, err := h.ReferralService.Activate(req.ReferralCode, referred.ID)
	if err != nil {
		rules := mergeErrorRules(referralErrorRules, accountErrorRules)
		respondMappedError(c, err, rules, response.CodeInternal, "error.referral_update_failed")
		return
	}
	response.Success(c, referral)
}

// ConvertReferral 推荐转化（被推荐人首次付费时由计费侧回调）
func (h *Handler) ConvertReferral(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ConvertReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	value, err := decimal.NewFromString(strings.TrimSpace(req.ConversionValue))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	referral, err := h.ReferralService.Convert(service.ConvertReferralInput{
		ReferralID:       id,
		SubscriptionTier: req.SubscriptionTier,
		ConversionValue:  value,
	})
	if err != nil {
		rules := mergeErrorRules(referralErrorRules, accountErrorRules)
		respondMappedError(c, err, rules, response.CodeInternal, "error.referral_update_failed")
		return
	}
	response.Success(c, referral)
}

// ChurnReferral 推荐流失（被推荐人退订时由计费侧回调）
func (h *Handler) ChurnReferral(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	referral, err := h.ReferralService.Churn(id)
	if err != nil {
		respondMappedError(c, err, referralErrorRules, response.CodeInternal, "error.referral_update_failed")
		return
	}
	response.Success(c, referral)
}
