package app

import (
	"context"
	"errors"
	"time"

	"github.com/sitewave-growth/internal/logger"

	"go.uber.org/zap"
)

// Service 可被运行器托管的长驻服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type runner struct {
	services []Service
	log      *zap.SugaredLogger
}

func newRunner(services []Service, log *zap.SugaredLogger) *runner {
	if log == nil {
		log = logger.S()
	}
	kept := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			kept = append(kept, svc)
		}
	}
	return &runner{services: kept, log: log}
}

// run 并发启动全部服务，任一服务退出或 ctx 结束即进入停机流程
func (r *runner) run(ctx context.Context, stopTimeout time.Duration) error {
	if len(r.services) == 0 {
		return errors.New("no services to run")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan error, len(r.services))
	for _, svc := range r.services {
		svc := svc
		go func() {
			r.log.Infow("service_start", "service", svc.Name())
			exits <- svc.Start(ctx)
			r.log.Infow("service_exit", "service", svc.Name())
		}()
	}

	runErr := waitFirstExit(ctx, exits)
	cancel()

	r.shutdown(stopTimeout)

	// 信号触发的退出属于正常停机
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// waitFirstExit 阻塞到 ctx 结束或任一服务先退出
func waitFirstExit(ctx context.Context, exits <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-exits:
		return err
	}
}

// shutdown 在限定时间内停掉所有服务
func (r *runner) shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
