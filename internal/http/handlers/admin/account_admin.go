package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminAccounts 获取账户列表
func (h *Handler) GetAdminAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	keyword := strings.TrimSpace(c.Query("keyword"))
	tier := strings.TrimSpace(c.Query("tier"))
	status := strings.TrimSpace(c.Query("status"))

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

	accounts, total, err := h.AccountService.List(repository.AccountListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     keyword,
		Tier:        tier,
		Status:      status,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.account_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, accounts, response.BuildPagination(page, pageSize, total))
}

// GetAdminAccount 获取账户详情
func (h *Handler) GetAdminAccount(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	account, err := h.AccountService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			respondError(c, response.CodeNotFound, "error.account_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.account_fetch_failed", err)
		return
	}

	activeReferrals, err := h.ReferralService.CountActiveByReferrer(account.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.account_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"account":          account,
		"active_referrals": activeReferrals,
	})
}

// GetAdminAccountCommissions 获取账户佣金汇总
func (h *Handler) GetAdminAccountCommissions(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	account, err := h.AccountService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			respondError(c, response.CodeNotFound, "error.account_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.account_fetch_failed", err)
		return
	}

	summary, err := h.CommissionService.SummaryForAccount(account.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}

	response.Success(c, summary)
}

// DisableAdminAccount 禁用账户
func (h *Handler) DisableAdminAccount(c *gin.Context) {
	h.setAdminAccountStatus(c, true)
}

// EnableAdminAccount 恢复账户
func (h *Handler) EnableAdminAccount(c *gin.Context) {
	h.setAdminAccountStatus(c, false)
}

func (h *Handler) setAdminAccountStatus(c *gin.Context, disable bool) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var (
		account *models.Account
		err     error
	)
	if disable {
		account, err = h.AccountService.Disable(id)
	} else {
		account, err = h.AccountService.Enable(id)
	}
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			respondError(c, response.CodeNotFound, "error.account_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.account_update_failed", err)
		return
	}

	response.Success(c, account)
}
