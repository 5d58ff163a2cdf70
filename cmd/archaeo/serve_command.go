package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/basel-ax/archaeo/internal/imageloader"
	"github.com/basel-ax/archaeo/internal/repository"
	"github.com/basel-ax/archaeo/internal/web"
)

const sessionSweepSchedule = "@every 1m"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			log := ctx.log
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			findings, db, err := ctx.openArchive(runCtx)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				log.WithField("driver", cfg.DB.Driver).Info("findings archive ready")
			}

			loader := imageloader.New(cfg.MaxUploadBytes, cfg.MaxImageEdge)
			srv, err := web.NewServer(web.Deps{
				Config:    cfg,
				Processor: ctx.assistantService(findings),
				Loader:    loader,
				Fetcher:   imageloader.NewFetcher(loader, cfg.CacheMaxBytes/4, cfg.CacheTTL),
				Log:       log,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			scheduler, err := newScheduler(runCtx, srv.Sessions(), findings, cfg.ArchivePruneSchedule, cfg.ArchiveRetention, log)
			if err != nil {
				return err
			}

			httpSrv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				log.WithField("addr", cfg.HTTPAddr).Info("web listening")
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				scheduler.Start()
				<-gctx.Done()
				<-scheduler.Stop().Done()
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	return cmd
}

// newScheduler registers the periodic session sweep and, with an archive,
// the retention prune
func newScheduler(ctx context.Context, sessions *web.Sessions, findings repository.FindingRepository, pruneSchedule string, retention time.Duration, log *logrus.Entry) (*cron.Cron, error) {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
	)

	if _, err := c.AddFunc(sessionSweepSchedule, func() {
		sessions.Sweep()
	}); err != nil {
		return nil, err
	}

	if findings == nil || retention <= 0 {
		return c, nil
	}
	if _, err := c.AddFunc(pruneSchedule, func() {
		log.Debug("[CRON] pruning findings archive")
		if _, err := pruneFindings(ctx, findings, retention, time.Now(), log); err != nil {
			log.WithError(err).Error("[CRON] prune failed")
		}
	}); err != nil {
		return nil, err
	}
	return c, nil
}
