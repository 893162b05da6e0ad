package serviceapi

import (
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// ProvisionAccountRequest 账户落库请求
type ProvisionAccountRequest struct {
	Email            string `json:"email" binding:"required"`
	DisplayName      string `json:"display_name"`
	SubscriptionTier string `json:"subscription_tier"`
}

// UpdateAccountTierRequest 订阅等级变更请求
type UpdateAccountTierRequest struct {
	SubscriptionTier string `json:"subscription_tier" binding:"required"`
}

// ProvisionAccount 平台侧注册回调，建立账户镜像
func (h *Handler) ProvisionAccount(c *gin.Context) {
	var req ProvisionAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	account, err := h.AccountService.Register(service.RegisterAccountInput{
		Email:            req.Email,
		DisplayName:      req.DisplayName,
		SubscriptionTier: req.SubscriptionTier,
	})
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_create_failed")
		return
	}
	response.Success(c, account)
}

// UpdateAccountTier 变更账户订阅等级（计费侧回调）
func (h *Handler) UpdateAccountTier(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	if publicID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateAccountTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	account, err := h.AccountService.GetByPublicID(publicID)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
		return
	}

	updated, err := h.AccountService.UpdateTier(account.ID, req.SubscriptionTier)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_update_failed")
		return
	}
	response.Success(c, updated)
}

// DisableAccount 禁用账户
func (h *Handler) DisableAccount(c *gin.Context) {
	h.setAccountStatus(c, true)
}

// EnableAccount 启用账户
func (h *Handler) EnableAccount(c *gin.Context) {
	h.setAccountStatus(c, false)
}

func (h *Handler) setAccountStatus(c *gin.Context, disable bool) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	if publicID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	account, err := h.AccountService.GetByPublicID(publicID)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
		return
	}

	if disable {
		account, err = h.AccountService.Disable(account.ID)
	} else {
		account, err = h.AccountService.Enable(account.ID)
	}
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_update_failed")
		return
	}
	response.Success(c, account)
}
