package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bondhub/internal/cache"
	"bondhub/internal/config"
	"bondhub/internal/handlers"
	"bondhub/internal/health"
	"bondhub/internal/livesync"
	"bondhub/internal/logging"
	"bondhub/internal/notification"
	"bondhub/internal/observability"
	"bondhub/internal/rabbitmq"
	"bondhub/internal/remote"
	"bondhub/internal/repositories"
	"bondhub/internal/telemetry"
	"bondhub/internal/usecase"
	"bondhub/internal/ws"
)

const serviceName = "bondhub"

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "BondHub chat sync node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
	root.AddCommand(serveCmd(), notifierCmd(), migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Env)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply remote store migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			client, err := remote.Connect(cmd.Context(), cfg.Remote.DSN, log)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func notifierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notifier",
		Short: "Dispatch push notifications for new messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			shutdown, err := telemetry.InitTracing(ctx, serviceName+"-notifier", cfg.Env, cfg.Tracing.Endpoint)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			client, err := remote.Connect(ctx, cfg.Remote.DSN, log)
			if err != nil {
				return err
			}
			defer client.Close()

			publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
			defer publisher.Close()
			log.Info("notifier started",
				zap.String("publisher", rabbitmq.PublisherMode(publisher)),
				zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)))

			changes := client.Changes(ctx)
			defer changes.Close()
			return notification.NewDispatcher(client, client, client, publisher, log).Run(ctx, changes)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP, WebSocket and health APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, cfg.Env, cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	client, err := remote.Connect(ctx, cfg.Remote.DSN, log)
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := cache.Shared(cfg.Cache.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
	defer publisher.Close()
	log.Info("publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)))
	audit := telemetry.NewAuditEmitter(publisher, "audit.auth", serviceName, cfg.Env, log)

	authRepo := repositories.NewAuthRepo(client, client, store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	repos := usecase.Repositories{
		Auth:        authRepo,
		Profiles:    repositories.NewUserProfileRepo(client, store, log).WithChanges(client),
		Connections: repositories.NewChatConnectionRepo(client, client, store, log),
		Chats:       repositories.NewChatRepo(client, client, store, log),
		Messages:    repositories.NewChatMessageRepo(client, client, client, store, log),
	}
	uc := usecase.New(repos)

	hub := ws.NewHub(publisher, log)
	avatars, err := notification.NewAvatarLoader(&http.Client{}, cfg.Notification.AvatarCacheSize, cfg.Notification.AvatarTimeout)
	if err != nil {
		return err
	}
	notifications := notification.NewHandler(hub, avatars, uc.MarkChatAsRead, log)
	defer notifications.Close()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.GET("/metrics", observability.MetricsHandler())

	handlers.RegisterRoutes(router, handlers.Routes{
		UseCases: uc,
		Tokens:   authRepo,
		Audit:    audit,
		Marker:   notifications,
	})
	if cfg.Debug {
		handlers.RegisterDebugRoutes(router, handlers.Debug{
			Audit:     audit,
			Publisher: rabbitmq.PublisherMode(publisher),
			Presence:  hub,
		})
	}

	wsHandler := ws.NewHandler(hub, uc, authRepo, log)
	router.GET("/ws/chats", wsHandler.ChatList)
	router.GET("/ws/chats/:chat_id", wsHandler.Messages)
	router.GET("/ws/connections", wsHandler.Connections)

	httpServer := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router}
	grpcServer, healthServer := health.NewServer()
	checker := health.NewChecker(healthServer, 15*time.Second, log,
		health.Probe{Name: "remote", Check: client.Ping},
		health.Probe{Name: "cache", Check: store.Ping},
	)
	syncer := livesync.NewSyncer(livesync.Repositories{
		Profiles:    repos.Profiles,
		Connections: repos.Connections,
		Chats:       repos.Chats,
		Messages:    repos.Messages,
	}, hub, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			return err
		}
		log.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		checker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		changes := client.Changes(gctx)
		defer changes.Close()
		return syncer.Run(gctx, changes)
	})
	g.Go(func() error {
		return consumePushes(gctx, cfg, notifications, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// consumePushes delivers pushes addressed to any user to this node's tray.
// Without AMQP the node simply shows no notifications.
func consumePushes(ctx context.Context, cfg config.Config, notifications *notification.Handler, log *zap.Logger) error {
	if cfg.AMQP.URL == "" {
		log.Warn("push consumer disabled: empty amqp url")
		return nil
	}
	// every node needs every push: the receiver may be connected anywhere
	queue := cfg.AMQP.PushQueue
	if host, err := os.Hostname(); err == nil {
		queue += "." + host
	}
	consumer, err := rabbitmq.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Exchange, queue, notification.BindingKey, log)
	if err != nil {
		log.Warn("push consumer disabled", zap.Error(err))
		return nil
	}
	defer consumer.Close()
	return consumer.Run(ctx, func(ctx context.Context, routingKey string, body []byte) error {
		return notifications.HandleDelivery(ctx, body)
	})
}
