package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/cli/config"
	httpctrl "github.com/unihelpdesk/helpdesk/pkg/controller/http"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
	"github.com/unihelpdesk/helpdesk/pkg/service/worker"
	"github.com/unihelpdesk/helpdesk/pkg/usecase"
	"github.com/unihelpdesk/helpdesk/pkg/utils/async"
	"github.com/unihelpdesk/helpdesk/pkg/utils/errutil"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var ticketRate float64
	var ticketBurst int
	var appCfg config.App
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var knowledgeCfg config.Knowledge
	var smtpCfg config.SMTP
	var slackCfg config.Slack
	var sentryCfg config.Sentry
	var staffCfg config.Staff

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("HELPDESK_ADDR"),
			Destination: &addr,
		},
		&cli.FloatFlag{
			Name:        "ticket-rate",
			Usage:       "Ticket submissions allowed per client per minute",
			Value:       6,
			Sources:     cli.EnvVars("HELPDESK_TICKET_RATE"),
			Destination: &ticketRate,
		},
		&cli.IntFlag{
			Name:        "ticket-burst",
			Usage:       "Ticket submissions a client may send at once",
			Value:       5,
			Sources:     cli.EnvVars("HELPDESK_TICKET_BURST"),
			Destination: &ticketBurst,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, knowledgeCfg.Flags()...)
	flags = append(flags, smtpCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, staffCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"app", appCfg,
				"repository", repoCfg,
				"knowledge", knowledgeCfg,
				"smtp", smtpCfg,
				"slack", slackCfg,
				"sentry", sentryCfg,
				"staff", staffCfg,
			)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			templates, err := app.Templates()
			if err != nil {
				return goerr.Wrap(err, "failed to parse mail templates")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			embedder, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedder")
			}
			cache, closeCache, err := knowledgeCfg.Cache()
			if err != nil {
				return err
			}
			defer closeCache()
			embedder = embedding.WithCache(embedder, cache)

			source, err := knowledgeCfg.Source()
			if err != nil {
				return err
			}

			notifier, err := smtpCfg.Configure()
			if err != nil {
				return err
			}

			ucOpts := []usecase.Option{
				usecase.WithTaxonomy(app.Taxonomy()),
				usecase.WithEmbedder(embedder),
				usecase.WithKnowledgeSource(source),
				usecase.WithNotifier(notifier, templates),
				usecase.WithNotifyTimeout(smtpCfg.Timeout()),
				usecase.WithBuildConcurrency(knowledgeCfg.Concurrency()),
			}

			alerter, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if alerter != nil {
				ucOpts = append(ucOpts, usecase.WithStaffAlerter(alerter))
				logging.Default().Info("Slack staff alerts enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// A failed first load still serves: every question escalates to a ticket
			if idx, err := uc.Knowledge.Reload(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "initial knowledge load failed")
			} else {
				logging.Default().Info("Knowledge index ready", "entries", idx.Len(), "model", embedder.Model())
			}

			var reloadWorker *worker.KnowledgeReloadWorker
			if interval := knowledgeCfg.ReloadInterval(); interval > 0 {
				reloadWorker = worker.NewKnowledgeReloadWorker(uc, interval)
				if err := reloadWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start knowledge reload worker")
				}
			}

			if staffCfg.Secret() == "" {
				logging.Default().Warn("Staff secret not configured, staff API is disabled")
			}

			httpHandler := httpctrl.New(uc,
				httpctrl.WithStaffSecret(staffCfg.Secret()),
				httpctrl.WithTicketRateLimit(ticketRate, ticketBurst),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if reloadWorker != nil {
					reloadWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := async.Wait(shutdownCtx); err != nil {
					logging.Default().Warn("pending staff alerts dropped", "error", err.Error())
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
