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

// GetAdminShareEvents 获取分享事件列表
func (h *Handler) GetAdminShareEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	platform := strings.TrimSpace(c.Query("platform"))

	var artifactID uint
	if artifactRaw := strings.TrimSpace(c.Query("artifact_id")); artifactRaw != "" {
		parsed, err := strconv.ParseUint(artifactRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		artifactID = uint(parsed)
	}

	var actorAccountID uint
	if actorRaw := strings.TrimSpace(c.Query("actor_account_id")); actorRaw != "" {
		parsed, err := strconv.ParseUint(actorRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		actorAccountID = uint(parsed)
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

	events, total, err := h.ShareService.ListEvents(repository.ShareEventListFilter{
		Page:           page,
		PageSize:       pageSize,
		ArtifactID:     artifactID,
		ActorAccountID: actorAccountID,
		Platform:       platform,
		CreatedFrom:    createdFrom,
		CreatedTo:      createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.share_event_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}

// GetAdminShareEvent 获取分享事件详情
func (h *Handler) GetAdminShareEvent(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	event, err := h.ShareService.GetEvent(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.share_event_fetch_failed", err)
		return
	}

	response.Success(c, event)
}
