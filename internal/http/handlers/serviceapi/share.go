package serviceapi

import (
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordShareRequest 分享入账请求
type RecordShareRequest struct {
	ArtifactPublicID     string   `json:"artifact_public_id" binding:"required"`
	Platform             string   `json:"platform" binding:"required"`
	TargetURL            string   `json:"target_url"`
	ActorAccountPublicID string   `json:"actor_account_public_id"`
	BoostWeight          *float64 `json:"boost_weight"`
}

// RecordShare 记录一次外部分享并重算病毒分
func (h *Handler) RecordShare(c *gin.Context) {
	var req RecordShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	artifact, err := h.ArtifactService.GetByPublicID(req.ArtifactPublicID)
	if err != nil {
		respondMappedError(c, err, artifactErrorRules, response.CodeInternal, "error.artifact_fetch_failed")
		return
	}

	var actorAccountID *uint
	if req.ActorAccountPublicID != "" {
		actor, err := h.AccountService.GetByPublicID(req.ActorAccountPublicID)
		if err != nil {
			respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
			return
		}
		actorAccountID = &actor.ID
	}

	requestID := ""
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			requestID = id
		}
	}

	event, err := h.ShareService.RecordShare(service.RecordShareInput{
		ArtifactID:     artifact.ID,
		Platform:       req.Platform,
		TargetURL:      req.TargetURL,
		ActorAccountID: actorAccountID,
		BoostWeight:    req.BoostWeight,
		RequestID:      requestID,
	})
	if err != nil {
		rules := mergeErrorRules(
			[]handlerErrorRule{{target: service.ErrSharePlatformInvalid, code: response.CodeBadRequest, key: "error.share_platform_invalid"}},
			artifactErrorRules,
		)
		respondMappedError(c, err, rules, response.CodeInternal, "error.share_record_failed")
		return
	}
	response.Success(c, event)
}
