package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"social_blog/internal/config"
	"social_blog/internal/handler"
	"social_blog/internal/httpapi"
	"social_blog/internal/imagegen"
	"social_blog/internal/logging"
	"social_blog/internal/publisher"
	"social_blog/internal/security"
	"social_blog/internal/service"
	"social_blog/internal/storage/postgres"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(cfg.Database.DSN(), cfg.Database.MigrationsPath, logger).Up(); err != nil {
			return err
		}
	}

	var events service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	txManager := postgres.NewTransactionManager(db)

	storyService := service.NewStoryService(
		postgres.NewStoryStore(db),
		postgres.NewStoryViewStore(db),
		txManager,
		events,
		logger,
		cfg.Stories,
	)
	userService := service.NewUserService(
		postgres.NewUserStore(db),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		logger,
	)
	postService := service.NewPostService(postgres.NewPostStore(db), txManager, logger, cfg.Posts)
	images := imagegen.New(imagegen.Config{
		BaseURL: cfg.ImageGen.BaseURL,
		APIKey:  cfg.ImageGen.APIKey,
		Timeout: cfg.ImageGen.Timeout,
	}, logger)

	h := handler.New(storyService, userService, postService, images, logger,
		handler.WithRedactedErrors(cfg.Server.RedactErrors))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(h, db, logger, cfg.Server.Mode),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return serve(ctx, srv, logger)
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
