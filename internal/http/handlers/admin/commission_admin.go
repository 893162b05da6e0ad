package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/repository"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCommissions 获取佣金台账列表
func (h *Handler) GetAdminCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))

	var referralID uint
	if referralRaw := strings.TrimSpace(c.Query("referral_id")); referralRaw != "" {
		parsed, err := strconv.ParseUint(referralRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		referralID = uint(parsed)
	}

	var beneficiaryAccountID uint
	if beneficiaryRaw := strings.TrimSpace(c.Query("beneficiary_account_id")); beneficiaryRaw != "" {
		parsed, err := strconv.ParseUint(beneficiaryRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		beneficiaryAccountID = uint(parsed)
	}

	periodFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("period_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	periodTo, err := parseTimeNullable(strings.TrimSpace(c.Query("period_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	entries, total, err := h.CommissionService.ListAdmin(repository.CommissionListFilter{
		Page:                 page,
		PageSize:             pageSize,
		ReferralID:           referralID,
		BeneficiaryAccountID: beneficiaryAccountID,
		Status:               status,
		PeriodFrom:           periodFrom,
		PeriodTo:             periodTo,
		WithReferral:         true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, entries, response.BuildPagination(page, pageSize, total))
}

// GetAdminCommission 获取佣金台账详情
func (h *Handler) GetAdminCommission(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	entry, err := h.CommissionService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrCommissionNotFound) {
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}

	response.Success(c, entry)
}

// MarkAdminCommissionPaid 标记佣金已支付
func (h *Handler) MarkAdminCommissionPaid(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	entry, err := h.CommissionService.MarkPaid(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionNotFound):
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
		case errors.Is(err, service.ErrCommissionStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.commission_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.commission_update_failed", err)
		}
		return
	}

	response.Success(c, entry)
}

// RejectCommissionRequest 驳回佣金请求
type RejectCommissionRequest struct {
	Reason string `json:"reason"`
}

// RejectAdminCommission 驳回佣金记录
func (h *Handler) RejectAdminCommission(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req RejectCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	entry, err := h.CommissionService.Reject(id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionNotFound):
			respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
		case errors.Is(err, service.ErrCommissionStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.commission_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.commission_update_failed", err)
		}
		return
	}

	response.Success(c, entry)
}

// ConfirmDueAdminCommissions 确认到期佣金
func (h *Handler) ConfirmDueAdminCommissions(c *gin.Context) {
	confirmed, err := h.CommissionService.ConfirmDue()
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_update_failed", err)
		return
	}

	response.Success(c, gin.H{"confirmed": confirmed})
}
