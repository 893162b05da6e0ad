package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (f *fakeService) Name() string {
	return f.name
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.startErr
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestRunnerStopsPeersWhenServiceFails(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeService{name: "http", startErr: boom}
	blocking := &fakeService{name: "worker", block: true}

	r := newRunner([]Service{failing, blocking}, zap.NewNop().Sugar())
	err := r.run(context.Background(), time.Second)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("expected peer service to be stopped")
	}
}

func TestRunnerTreatsContextCancelAsCleanExit(t *testing.T) {
	blocking := &fakeService{name: "worker", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	r := newRunner([]Service{blocking}, zap.NewNop().Sugar())
	if err := r.run(ctx, time.Second); err != nil {
		t.Fatalf("expected clean exit on cancel, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("expected service to be stopped")
	}
}

func TestRunnerRejectsEmptyServiceList(t *testing.T) {
	r := newRunner([]Service{nil}, zap.NewNop().Sugar())
	if err := r.run(context.Background(), time.Second); err == nil {
		t.Fatalf("expected error for empty service list")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.Mode != ModeAll {
		t.Fatalf("expected default mode %q, got %q", ModeAll, opts.Mode)
	}
	if opts.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("unexpected shutdown timeout: %v", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("expected fallback logger")
	}
}
