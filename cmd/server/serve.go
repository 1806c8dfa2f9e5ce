package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// zone data for oncall and localtime when the host has none
	_ "time/tzdata"

	"Zodbot/internal/api/middleware"
	"Zodbot/internal/api/routes"
	"Zodbot/internal/bot"
	"Zodbot/internal/clients/apiclient"
	"Zodbot/internal/clients/bodhi"
	"Zodbot/internal/clients/bugzilla"
	"Zodbot/internal/clients/fasjson"
	"Zodbot/internal/clients/fedocal"
	"Zodbot/internal/clients/fedorastatus"
	"Zodbot/internal/clients/pagure"
	"Zodbot/internal/config"
	"Zodbot/internal/core/cookies"
	"Zodbot/internal/core/identity"
	"Zodbot/internal/core/oncall"
	"Zodbot/internal/db"
	"Zodbot/internal/db/repo"
	"Zodbot/internal/matrix"
	"Zodbot/internal/metrics"
	"Zodbot/internal/publish"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Matrix and answer commands until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	conn, err := db.Open(ctx, dialect, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	logger.Info("connected to database", zap.String("driver", string(dialect)))

	if err := db.Migrate(conn, dialect); err != nil {
		return err
	}

	m := metrics.New()
	service := func(name, baseURL string) apiclient.Config {
		c := apiclient.DefaultConfig(name, baseURL)
		c.Logger = logger.Named(name)
		c.Observe = m.ObserveBackend
		c.Timeout = cfg.Services.Timeout
		c.RequestsPerSecond = cfg.Services.RequestsPerSecond
		c.Burst = cfg.Services.Burst
		c.UserAgent = cfg.BotName + "/" + cfg.Version
		return c
	}

	fas := fasjson.NewClient(service("fasjson", cfg.Services.FASJSONURL))
	releases := bodhi.NewClient(service("bodhi", cfg.Services.BodhiURL), cfg.Services.ReleaseCacheTTL)

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := publisher.Close(closeCtx); err != nil {
			logger.Warn("failed to close publisher", zap.Error(err))
		}
	}()

	chat, err := matrix.NewClient(matrix.ClientConfig{
		// must outlive the long-poll
		HTTPClient:    &http.Client{Timeout: cfg.Matrix.SyncTimeout + 30*time.Second},
		Logger:        logger.Named("matrix"),
		HomeserverURL: cfg.Matrix.Homeserver,
		AccessToken:   cfg.Matrix.AccessToken,
		UserID:        cfg.Matrix.UserID,
	})
	if err != nil {
		return err
	}
	userID, err := chat.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with %s: %w", cfg.Matrix.Homeserver, err)
	}
	logger.Info("logged in to matrix", zap.String("user_id", userID))

	throttle := middleware.NewRateLimiter(cfg.Throttle.Commands, cfg.Throttle.Window)
	defer throttle.Stop()

	zodbot := bot.New(bot.Options{
		Name:        cfg.BotName,
		Version:     cfg.Version,
		Prefix:      cfg.CommandPrefix,
		ControlRoom: cfg.ControlRoom,
	}, bot.Deps{
		Chat: chat,
		Resolver: identity.NewResolver(fas, identity.Settings{
			DefaultDomain: cfg.DefaultDomain(),
			SafeDomains:   cfg.SafeDomains,
		}),
		Groups:   fas,
		Bugs:     bugzilla.NewClient(service("bugzilla", cfg.Services.BugzillaURL)),
		Issues:   pagure.NewClient(service("pagureio", cfg.Services.PagureIOURL)),
		DistGit:  pagure.NewClient(service("distgit", cfg.Services.PagureDistGitURL)),
		Status:   fedorastatus.NewClient(service("fedorastatus", cfg.Services.FedoraStatusURL)),
		Calendar: fedocal.NewClient(service("fedocal", cfg.Services.FedocalURL)),
		Oncall:   oncall.NewOncallService(repo.NewOncallRepository(conn, dialect), cfg.DefaultDomain()),
		Cookies: cookies.NewCookieService(repo.NewCookieRepository(conn, dialect), releases, publisher,
			logger.Named("cookies")),
		Throttle: throttle,
		Metrics:  m,
		Logger:   logger.Named("bot"),
	})

	opsLimiter := middleware.NewRateLimiter(100, time.Minute)
	defer opsLimiter.Stop()
	ops := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: routes.NewOpsRouter(routes.OpsDeps{
			DB:      conn,
			Metrics: m.Handler(),
			Limiter: opsLimiter,
			Logger:  logger.Named("ops"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	opsErr := make(chan error, 1)
	go func() {
		logger.Info("ops server listening", zap.String("addr", cfg.ListenAddr))
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			opsErr <- err
		}
		close(opsErr)
	}()

	syncer := matrix.NewSyncer(chat, zodbot, logger.Named("sync"))
	syncer.Timeout = cfg.Matrix.SyncTimeout

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	syncErr := make(chan error, 1)
	go func() { syncErr <- syncer.Run(syncCtx) }()

	var runErr error
	select {
	case err := <-syncErr:
		if !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("matrix sync stopped: %w", err)
		}
	case err, ok := <-opsErr:
		if ok {
			runErr = fmt.Errorf("ops server failed: %w", err)
		}
		cancelSync()
		<-syncErr
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shut down ops server", zap.Error(err))
	}
	return runErr
}

// publisherCloser is a cookie publisher that must be flushed on exit
type publisherCloser interface {
	cookies.Publisher
	Close(ctx context.Context) error
}

func newPublisher(cfg config.KafkaConfig, logger *zap.Logger) (publisherCloser, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("no kafka brokers configured, cookie events are not published")
		return publish.Nop{}, nil
	}
	p, err := publish.NewKafkaPublisher(cfg.Brokers, cfg.Topic, logger.Named("publish"))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return p, nil
}
