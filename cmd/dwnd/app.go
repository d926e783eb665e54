package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hookdeck/dwn-go/internal/config"
	"github.com/hookdeck/dwn-go/internal/eventbus"
	"github.com/hookdeck/dwn-go/internal/logging"
	"github.com/hookdeck/dwn-go/internal/scheduler"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

// App owns the lifecycle of a dwnd process: load config, open the four
// stores, start the event bus and the resumable task scheduler, then block
// until a shutdown signal or a fatal error.
type App struct {
	config *config.Config
	logger *logging.Logger

	stores    *stores
	bus       *eventbus.Bus
	scheduler *scheduler.Scheduler
}

func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

func (a *App) Run(ctx context.Context) error {
	if err := a.PreRun(ctx); err != nil {
		return err
	}
	defer a.PostRun(ctx)

	return a.run(ctx)
}

// PreRun initializes every dependency before the process starts serving.
func (a *App) PreRun(ctx context.Context) (err error) {
	logger, err := logging.NewLogger(logging.WithLogLevel(a.config.LogLevel))
	if err != nil {
		return err
	}
	a.logger = logger

	a.logger.Info("starting dwnd",
		zap.String("config_file", a.config.ConfigFilePath()),
		zap.String("log_level", a.config.LogLevel))

	s, err := openStores(ctx, a.config.MessageStoreURL, a.config.DataStoreURL, a.config.EventLogURL, a.config.TaskStoreURL)
	if err != nil {
		a.logger.Error("failed to open stores", zap.Error(err))
		return err
	}
	if err := s.openAll(ctx); err != nil {
		a.logger.Error("failed to initialize stores", zap.Error(err))
		return err
	}
	a.stores = s

	a.bus = eventbus.New(eventbus.WithLogger(a.logger))
	if err := a.bus.Open(ctx); err != nil {
		a.logger.Error("failed to open event bus", zap.Error(err))
		return err
	}

	a.scheduler = scheduler.New(a.stores.tasks, a.taskHandler(),
		scheduler.WithPollInterval(a.config.TaskPollInterval()),
		scheduler.WithBatchSize(a.config.TaskBatchSize),
		scheduler.WithConcurrency(a.config.TaskConcurrency),
		scheduler.WithLogger(a.logger),
	)

	return nil
}

// PostRun releases everything PreRun acquired, in reverse order.
func (a *App) PostRun(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.bus != nil {
		if err := a.bus.Close(shutdownCtx); err != nil {
			a.logger.Error("event bus shutdown error", zap.Error(err))
		}
	}
	if a.stores != nil {
		a.stores.closeAll(shutdownCtx)
	}
	if a.logger != nil {
		a.logger.Info("dwnd shutdown complete")
		a.logger.Sync()
	}
}

// taskHandler is a placeholder handler: the concrete task payloads (e.g.
// "sync records for context X") belong to the RPC/collaborator layer this
// core doesn't implement; this handler logs and acknowledges so the
// scheduler's grab/delete loop is exercised end to end.
func (a *App) taskHandler() scheduler.Handler {
	return scheduler.HandlerFunc(func(ctx context.Context, task driver.ManagedTask) error {
		lc := a.logger.Ctx(ctx)
		lc.Audit("task handled", zap.String("task_id", task.ID))
		return nil
	})
}

func (a *App) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.scheduler.Run(ctx)
	}()

	select {
	case <-termChan:
		a.logger.Info("shutdown signal received")
		cancel()
		err := <-errChan
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("error during graceful shutdown", zap.Error(err))
			return err
		}
		return nil
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("scheduler exited unexpectedly", zap.Error(err))
			return err
		}
		return err
	}
}
