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

// GetAdminArtifacts 获取站点列表
func (h *Handler) GetAdminArtifacts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	keyword := strings.TrimSpace(c.Query("keyword"))
	status := strings.TrimSpace(c.Query("status"))
	orderBy := strings.TrimSpace(c.Query("order_by"))

	var ownerAccountID uint
	if ownerRaw := strings.TrimSpace(c.Query("owner_account_id")); ownerRaw != "" {
		parsed, err := strconv.ParseUint(ownerRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		ownerAccountID = uint(parsed)
	}

	var autoFeatured *bool
	if featuredRaw := strings.TrimSpace(c.Query("auto_featured")); featuredRaw != "" {
		parsed, err := strconv.ParseBool(featuredRaw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		autoFeatured = &parsed
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

	artifacts, total, err := h.ArtifactService.ListAdmin(repository.ArtifactListFilter{
		Page:           page,
		PageSize:       pageSize,
		OwnerAccountID: ownerAccountID,
		Keyword:        keyword,
		Status:         status,
		AutoFeatured:   autoFeatured,
		CreatedFrom:    createdFrom,
		CreatedTo:      createdTo,
		OrderBy:        orderBy,
		WithOwner:      true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.artifact_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, artifacts, response.BuildPagination(page, pageSize, total))
}

// GetAdminArtifact 获取站点详情
func (h *Handler) GetAdminArtifact(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	artifact, err := h.ArtifactService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrArtifactNotFound) {
			respondError(c, response.CodeNotFound, "error.artifact_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.artifact_fetch_failed", err)
		return
	}

	breakdown, err := h.ArtifactService.ComputeViralScore(artifact.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.artifact_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"artifact":  artifact,
		"breakdown": breakdown,
	})
}

// SuspendArtifactRequest 站点下架请求
type SuspendArtifactRequest struct {
	Reason string `json:"reason"`
}

// SuspendAdminArtifact 下架站点
func (h *Handler) SuspendAdminArtifact(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req SuspendArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	artifact, err := h.ArtifactService.Suspend(id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArtifactNotFound):
			respondError(c, response.CodeNotFound, "error.artifact_not_found", nil)
		case errors.Is(err, service.ErrArtifactStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.artifact_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.artifact_update_failed", err)
		}
		return
	}

	response.Success(c, artifact)
}

// UnsuspendAdminArtifact 恢复站点
func (h *Handler) UnsuspendAdminArtifact(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	artifact, err := h.ArtifactService.Unsuspend(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArtifactNotFound):
			respondError(c, response.CodeNotFound, "error.artifact_not_found", nil)
		case errors.Is(err, service.ErrArtifactStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.artifact_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.artifact_update_failed", err)
		}
		return
	}

	response.Success(c, artifact)
}

// RescoreAdminArtifact 重算站点分值
func (h *Handler) RescoreAdminArtifact(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	artifact, err := h.ArtifactService.Rescore(id)
	if err != nil {
		if errors.Is(err, service.ErrArtifactNotFound) {
			respondError(c, response.CodeNotFound, "error.artifact_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.artifact_update_failed", err)
		return
	}

	response.Success(c, artifact)
}
