package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/logger"
)

const dateLayout = "2006-01-02"

// flags override config for one invocation.
type flags struct {
	season int
	week   int
	date   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("gridiron: " + err.Error() + "\n")
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "gridiron",
		Short:         "Fantasy football stats pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&f.season, "season", 0, "season year (overrides config)")
	root.PersistentFlags().IntVar(&f.week, "week", 0, "current week (overrides config)")
	root.PersistentFlags().StringVar(&f.date, "date", "", "value table date, YYYY-MM-DD (default today)")

	root.AddCommand(
		&cobra.Command{
			Use:   "build",
			Short: "Build weekly, season-to-date, usage and defense-vs-position tables",
			RunE: withApp(f, func(ctx context.Context, a *application, p params) (any, error) {
				return a.svc.BuildStats(ctx, p.season, p.week)
			}),
		},
		&cobra.Command{
			Use:   "values",
			Short: "Build the trade value table from the stored season-to-date table",
			RunE: withApp(f, func(ctx context.Context, a *application, p params) (any, error) {
				return a.svc.BuildValues(ctx, p.season, p.date)
			}),
		},
		&cobra.Command{
			Use:   "publish",
			Short: "Publish league rosters, standings, matchups and player lists",
			RunE: withApp(f, func(ctx context.Context, a *application, p params) (any, error) {
				return a.svc.Publish(ctx, p.season, p.week)
			}),
		},
		&cobra.Command{
			Use:   "transactions",
			Short: "Build the season transaction history through the current week",
			RunE: withApp(f, func(ctx context.Context, a *application, p params) (any, error) {
				return a.svc.TransactionHistory(ctx, p.season, p.week)
			}),
		},
		&cobra.Command{
			Use:   "run",
			Short: "Build stats and values, then publish when a league is configured",
			RunE: withApp(f, func(ctx context.Context, a *application, p params) (any, error) {
				return a.svc.Run(ctx, p.season, p.week, p.date)
			}),
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve stored snapshots over HTTP and run the pipeline on a schedule",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, p, err := setup(cmd.Context(), f)
				if err != nil {
					return err
				}
				a, err := newApplication(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer a.Close()
				return serve(cmd.Context(), cfg, a, p)
			},
		},
	)
	return root
}

// params are the resolved season, week and date for one invocation.
type params struct {
	season int
	week   int
	date   time.Time
}

type action func(ctx context.Context, a *application, p params) (any, error)

// withApp loads config, wires the application, runs fn and prints its
// report as JSON.
func withApp(f *flags, fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, p, err := setup(ctx, f)
		if err != nil {
			return err
		}
		a, err := newApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := fn(ctx, a, p)
		if report != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(report); encErr != nil {
				return errors.Join(err, encErr)
			}
		}
		return err
	}
}

// setup loads config, initializes logging and resolves flags.
func setup(ctx context.Context, f *flags) (*config.Config, params, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, params{}, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return nil, params{}, fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	p, err := resolve(cfg, f, time.Now())
	return cfg, p, err
}

// resolve applies flag overrides to config values.
func resolve(cfg *config.Config, f *flags, now time.Time) (params, error) {
	p := params{season: cfg.Season, week: cfg.CurrentWeek(), date: now}
	if f.season > 0 {
		p.season = f.season
	}
	if p.season <= 0 {
		p.season = now.Year()
	}
	if f.week > 0 {
		p.week = f.week
	}
	if f.date != "" {
		d, err := time.Parse(dateLayout, f.date)
		if err != nil {
			return p, fmt.Errorf("--date must be %s: %w", dateLayout, err)
		}
		p.date = d
	}
	return p, nil
}
