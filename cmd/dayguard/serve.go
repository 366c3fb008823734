package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dayguard/internal/api"
	"dayguard/internal/config"
	"dayguard/internal/core"
	"dayguard/internal/logging"
	"dayguard/internal/notify"
	"dayguard/internal/scheduler"
	"dayguard/internal/security"
	"dayguard/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the supervisor's HTTP operation surface and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewMultiLogger(logging.MultiLoggerConfig{
		Format:     cfg.Logging.Format,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		CorePath:   cfg.Logging.Dir + "/core.log",
		AuditPath:  cfg.Logging.Dir + "/audit.log",
		NotifyPath: cfg.Logging.Dir + "/notify.log",
	})
	if err != nil {
		return fmt.Errorf("opening loggers: %w", err)
	}
	defer logger.Close()

	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	var backends []notify.Backend
	var wsBackend *notify.WebSocketBackend
	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegramBackend(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Core.Warn("telegram backend disabled", "error", err)
		} else {
			backends = append(backends, tg)
		}
	}
	wsBackend = notify.NewWebSocketBackend()
	backends = append(backends, wsBackend)
	notifyManager := notify.NewManager(logger.Notify, backends...)

	accountant := core.NewAccountant(store)
	exceptions := core.NewExceptionStore(store)
	approvals := core.NewApprovalWorkflow(store, notifyManager)
	supervisor := core.NewSupervisor(store, accountant, exceptions, notifyManager, nil)
	if err := supervisor.Restore(ctx); err != nil {
		logger.Core.Warn("could not restore active profile", "error", err)
	}

	sched := scheduler.New(logger.Core,
		scheduler.RollupJob(store, accountant, exceptions),
		scheduler.HealthCheckJob(supervisor),
		scheduler.ExceptionSweepJob(exceptions),
	)
	sched.Start(ctx)
	defer sched.Stop()

	server := &api.Server{
		Supervisor:   supervisor,
		Accountant:   accountant,
		Exceptions:   exceptions,
		Approvals:    approvals,
		Store:        store,
		Sessions:     security.NewSessionStore(),
		RateLimit:    security.NewRateLimiter(),
		PasswordHash: cfg.Security.ParentPasswordHash,
		Logger:       logger.Core,
		AuditLogger:  logger.Audit,
		WebSocket:    wsBackend,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.NewRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Core.Info("starting http server", "addr", httpServer.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Core.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
