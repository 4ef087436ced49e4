package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/teamsense-lab/argus/pkg/cli/config"
	httpctrl "github.com/teamsense-lab/argus/pkg/controller/http"
	"github.com/teamsense-lab/argus/pkg/service/tracker"
	"github.com/teamsense-lab/argus/pkg/service/usercache"
	"github.com/teamsense-lab/argus/pkg/service/worker"
	"github.com/teamsense-lab/argus/pkg/usecase"
	"github.com/teamsense-lab/argus/pkg/utils/errutil"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var trackerCfg config.Tracker
	var chatCfg config.Chat
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ARGUS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "directory-refresh-interval",
			Usage:       "Interval of the background workspace directory refresh",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("ARGUS_DIRECTORY_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, trackerCfg.Flags()...)
	flags = append(flags, chatCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := sentryCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to configure error reporting")
			}
			defer errutil.FlushSentry()

			scoring, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
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

			oauth, err := trackerCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure tracker OAuth")
			}
			cipher, err := trackerCfg.Cipher()
			if err != nil {
				return goerr.Wrap(err, "failed to configure token cipher")
			}
			logging.Default().Info("Tracker OAuth enabled", "tracker", trackerCfg)

			users := usercache.New()
			users.Start()
			defer users.Stop()

			ucOpts := []usecase.Option{
				usecase.WithCipher(cipher),
				usecase.WithOAuth(oauth),
				usecase.WithTrackerClientFactory(tracker.NewFactory(
					tracker.WithPageSize(scoring.PageSize),
					tracker.WithMaxPages(scoring.MaxPages),
				)),
				usecase.WithUserCache(users),
				usecase.WithScoring(scoring),
			}

			if chatCfg.IsConfigured() {
				chatSvc, err := chatCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to initialize chat service")
				}
				ucOpts = append(ucOpts, usecase.WithChat(chatSvc))
				logging.Default().Info("Chat directory enabled", "chat", chatCfg)
			} else {
				logging.Default().Info("Chat bot token not configured, auto-map requires explicit member lists")
			}

			uc := usecase.New(repo, ucOpts...)

			refreshWorker := worker.NewDirectoryRefreshWorker(uc, refreshInterval)
			if err := refreshWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start directory refresh worker")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
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
				refreshWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				refreshWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
