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

// GetAdminReferrals 获取推荐关系列表
func (h *Handler) GetAdminReferrals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	referredEmail := strings.TrimSpace(c.Query("referred_email"))
	status := strings.TrimSpace(c.Query("status"))

	var referrerAccountID uint
	if referrerRaw := strings.TrimSpace(c.Query("referrer_account_id")); referrerRaw != "" {
		parsed, err := strconv.ParseUint(referrerRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		referrerAccountID = uint(parsed)
	}

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	referrals, total, err := h.ReferralService.ListAdmin(repository.ReferralListFilter{
		Page:              page,
		PageSize:          pageSize,
		ReferrerAccountID: referrerAccountID,
		ReferredEmail:     referredEmail,
		Status:            status,
		CreatedFrom:       createdFrom,
		CreatedTo:         createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, referrals, response.BuildPagination(page, pageSize, total))
}

// GetAdminReferral 获取推荐关系详情
func (h *Handler) GetAdminReferral(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	referral, err := h.ReferralService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrReferralNotFound) {
			respondError(c, response.CodeNotFound, "error.referral_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}

	response.Success(c, referral)
}
