package queue

import (
	"encoding/json"

	"github.com/sitewave-growth/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShowcaseRefresh 展示位重排任务
	TaskShowcaseRefresh = constants.TaskShowcaseRefresh
	// TaskArtifactRescore 站点重算病毒分任务
	TaskArtifactRescore = constants.TaskArtifactRescore
)

// ShowcaseRefreshPayload 展示位重排任务载荷
type ShowcaseRefreshPayload struct {
	Reason string `json:"reason"`
}

// ArtifactRescorePayload 站点重算任务载荷
type ArtifactRescorePayload struct {
	ArtifactID uint `json:"artifact_id"`
}

// NewShowcaseRefreshTask 创建展示位重排任务
func NewShowcaseRefreshTask(payload ShowcaseRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShowcaseRefresh, body), nil
}

// NewArtifactRescoreTask 创建站点重算任务
func NewArtifactRescoreTask(payload ArtifactRescorePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskArtifactRescore, body), nil
}
