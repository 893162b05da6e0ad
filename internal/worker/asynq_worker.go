package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/provider"
	"github.com/sitewave-growth/internal/queue"
	"github.com/sitewave-growth/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShowcaseRefresh, c.handleShowcaseRefresh)
	mux.HandleFunc(queue.TaskArtifactRescore, c.handleArtifactRescore)
}

// decodeTask 解析任务载荷，失败时记日志并把错误交还 asynq
func decodeTask(task *asynq.Task, event string, out interface{}) error {
	if err := json.Unmarshal(task.Payload(), out); err != nil {
		logger.Warnw(event+"_unmarshal_failed", "error", err)
		return err
	}
	return nil
}

// handleShowcaseRefresh 全量重排展示位
func (c *Consumer) handleShowcaseRefresh(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_showcase_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShowcaseRefreshPayload
	if err := decodeTask(task, "worker_showcase_refresh", &payload); err != nil {
		return err
	}
	if c.ShowcaseService == nil {
		logger.Warnw("worker_showcase_refresh_skip_service_nil", "reason", payload.Reason)
		return nil
	}

	total, err := c.ShowcaseService.Rebuild()
	if err != nil {
		logger.Warnw("worker_showcase_refresh_failed", "reason", payload.Reason, "error", err)
		return err
	}
	logger.Debugw("worker_showcase_refresh_done", "reason", payload.Reason, "entries", total)
	return nil
}

// handleArtifactRescore 重算单个站点的增长分，站点已不存在时直接完成任务
func (c *Consumer) handleArtifactRescore(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_artifact_rescore_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ArtifactRescorePayload
	if err := decodeTask(task, "worker_artifact_rescore", &payload); err != nil {
		return err
	}
	if payload.ArtifactID == 0 {
		logger.Debugw("worker_artifact_rescore_skip_invalid_payload", "artifact_id", payload.ArtifactID)
		return nil
	}
	if c.ArtifactService == nil {
		logger.Warnw("worker_artifact_rescore_skip_service_nil", "artifact_id", payload.ArtifactID)
		return nil
	}

	_, err := c.ArtifactService.Rescore(payload.ArtifactID)
	if errors.Is(err, service.ErrArtifactNotFound) {
		logger.Debugw("worker_artifact_rescore_skip_not_found", "artifact_id", payload.ArtifactID)
		return nil
	}
	if err != nil {
		logger.Warnw("worker_artifact_rescore_failed", "artifact_id", payload.ArtifactID, "error", err)
		return err
	}
	return nil
}
