package serviceapi

import (
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateArtifactRequest 站点创建请求
type CreateArtifactRequest struct {
	OwnerAccountPublicID string   `json:"owner_account_public_id" binding:"required"`
	Title                string   `json:"title" binding:"required"`
	Slug                 string   `json:"slug"`
	Tags                 []string `json:"tags"`
}

// IngestEngagementRequest 互动计数摄入请求（绝对值快照）
type IngestEngagementRequest struct {
	Pageviews int64 `json:"pageviews"`
	Likes     int64 `json:"likes"`
	Comments  int64 `json:"comments"`
}

// CreateArtifact 站点生成流水线回调，登记新站点
func (h *Handler) CreateArtifact(c *gin.Context) {
	var req CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	owner, err := h.AccountService.GetByPublicID(req.OwnerAccountPublicID)
	if err != nil {
		respondMappedError(c, err, accountErrorRules, response.CodeInternal, "error.account_fetch_failed")
		return
	}

	artifact, err := h.ArtifactService.Create(service.CreateArtifactInput{
		OwnerAccountID: owner.ID,
		Title:          req.Title,
		Slug:           req.Slug,
		Tags:           req.Tags,
	})
	if err != nil {
		rules := mergeErrorRules(artifactErrorRules, accountErrorRules)
		respondMappedError(c, err, rules, response.CodeInternal, "error.artifact_create_failed")
		return
	}
	response.Success(c, artifact)
}

// MarkArtifactBuilding 站点进入构建中
func (h *Handler) MarkArtifactBuilding(c *gin.Context) {
	artifact, ok := h.resolveArtifact(c)
	if !ok {
		return
	}

	updated, err := h.ArtifactService.MarkBuilding(artifact.ID)
	if err != nil {
		respondMappedError(c, err, artifactErrorRules, response.CodeInternal, "error.artifact_update_failed")
		return
	}
	response.Success(c, updated)
}

// PublishArtifact 站点上线
func (h *Handler) PublishArtifact(c *gin.Context) {
	artifact, ok := h.resolveArtifact(c)
	if !ok {
		return
	}

	updated, err := h.ArtifactService.Publish(artifact.ID)
	if err != nil {
		respondMappedError(c, err, artifactErrorRules, response.CodeInternal, "error.artifact_update_failed")
		return
	}
	response.Success(c, updated)
}

// IngestEngagement 摄入互动计数快照并重算病毒分
func (h *Handler) IngestEngagement(c *gin.Context) {
	artifact, ok := h.resolveArtifact(c)
	if !ok {
		return
	}
	var req IngestEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	updated, breakdown, err := h.ArtifactService.IngestEngagement(service.EngagementInput{
		ArtifactID: artifact.ID,
		Pageviews:  req.Pageviews,
		Likes:      req.Likes,
		Comments:   req.Comments,
	})
	if err != nil {
		respondMappedError(c, err, artifactErrorRules, response.CodeInternal, "error.engagement_ingest_failed")
		return
	}
	response.Success(c, gin.H{
		"artifact":  updated,
		"breakdown": breakdown,
	})
}

func (h *Handler) resolveArtifact(c *gin.Context) (*models.Artifact, bool) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	if publicID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	artifact, err := h.ArtifactService.GetByPublicID(publicID)
	if err != nil {
		respondMappedError(c, err, artifactErrorRules, response.CodeInternal, "error.artifact_fetch_failed")
		return nil, false
	}
	return artifact, true
}
