package serviceapi

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecordCommissionRequest 佣金入账请求
type RecordCommissionRequest struct {
	ReferralID         uint   `json:"referral_id" binding:"required"`
	PeriodStart        string `json:"period_start" binding:"required"`
	PeriodEnd          string `json:"period_end" binding:"required"`
	SubscriptionAmount string `json:"subscription_amount" binding:"required"`
}

// RecordCommission 计费侧出账回调，按账期入账佣金
func (h *Handler) RecordCommission(c *gin.Context) {
	var req RecordCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	periodStart, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PeriodStart))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.commission_period_invalid", err)
		return
	}
	periodEnd, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PeriodEnd))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.commission_period_invalid", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.SubscriptionAmount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.commission_amount_invalid", err)
		return
	}

	entry, err := h.CommissionService.RecordCommission(service.RecordCommissionInput{
		ReferralID:         req.ReferralID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		SubscriptionAmount: amount,
	})
	if err != nil {
		rules := mergeErrorRules(commissionErrorRules, referralErrorRules)
		respondMappedError(c, err, rules, response.CodeInternal, "error.commission_record_failed")
		return
	}
	response.Success(c, entry)
}
