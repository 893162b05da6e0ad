package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/constants"

	"github.com/hibiken/asynq"
)

// Client 队列生产端封装
// 队列未启用时所有入队调用静默跳过，业务路径不受影响
type Client struct {
	client       *asynq.Client
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{defaultQueue: constants.QueueDefault}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.client = asynq.NewClient(redisOpt(cfg))
	return c, nil
}

// Enabled 判断队列是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueShowcaseRefresh 推送展示位重排任务
func (c *Client) EnqueueShowcaseRefresh(payload ShowcaseRefreshPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewShowcaseRefreshTask(payload)
	if err != nil {
		return err
	}
	return c.submit(task, opts...)
}

// EnqueueArtifactRescore 推送站点重算任务
func (c *Client) EnqueueArtifactRescore(payload ArtifactRescorePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewArtifactRescoreTask(payload)
	if err != nil {
		return err
	}
	return c.submit(task, opts...)
}

// EnqueueArtifactRescoreIn 延迟推送站点重算任务（衰减换档时使用）
func (c *Client) EnqueueArtifactRescoreIn(payload ArtifactRescorePayload, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	return c.EnqueueArtifactRescore(payload, asynq.ProcessIn(delay))
}

func (c *Client) submit(task *asynq.Task, opts ...asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err := c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成消费端的连接与调度配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{constants.QueueDefault: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	return opt
}
