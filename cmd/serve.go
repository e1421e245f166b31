package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/gridiron/internal/adapters/http/api"
	"github.com/okian/gridiron/internal/adapters/http/swagger"
	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// serve runs the read API until ctx is done. A non-empty schedule also
// starts the pipeline periodically.
func serve(ctx context.Context, cfg *config.Config, a *application, p params) error {
	log := logger.Get()

	sched, err := schedule(ctx, cfg.Schedule, a.svc, p)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
	}

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(a.svc, api.RunDefaults{Season: p.season, Week: p.week}).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Join(api.ErrServe, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if sched != nil {
			<-sched.Stop().Done()
		}
		return errors.Join(err, a.svc.Shutdown(context.Background()))
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return shutdown(shutdownCtx, sched, srv, a.svc)
}

// pipelineCloser is the part of the service stopped on shutdown.
type pipelineCloser interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops the scheduler, then the HTTP server, then any background
// run, so nothing new starts while the run in flight is cancelled.
func shutdown(ctx context.Context, sched *cron.Cron, srv *http.Server, svc pipelineCloser) error {
	log := logger.Get()
	if sched != nil {
		<-sched.Stop().Done()
	}
	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		errs = append(errs, err)
	}
	if err := svc.Shutdown(ctx); err != nil {
		log.Error(ctx, "pipeline shutdown failed", logger.Error(err))
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info(ctx, "server stopped")
	return nil
}

// runStarter is the part of the service the scheduler drives.
type runStarter interface {
	StartRun(season, week int, date time.Time) (string, error)
}

// schedule returns a cron that starts a run on spec, or nil when spec is empty.
func schedule(ctx context.Context, spec string, svc runStarter, p params) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	log := logger.Get().Named("scheduler")
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		id, err := svc.StartRun(p.season, p.week, time.Now())
		switch {
		case errors.Is(err, app.ErrRunInProgress):
			log.Warn(ctx, "previous run still in progress, skipping")
		case err != nil:
			log.Error(ctx, "scheduled run failed to start", logger.Error(err))
		default:
			log.Info(ctx, "scheduled run started", logger.String("run_id", id))
		}
	})
	if err != nil {
		return nil, errors.Join(config.ErrInvalidConfig, err)
	}
	log.Info(ctx, "pipeline scheduled", logger.String("schedule", spec))
	return c, nil
}
