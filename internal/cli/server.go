package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizdesk/internal/app"
	"quizdesk/internal/auth"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/memory"
	infraredis "quizdesk/internal/infra/redis"
	transport "quizdesk/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	runCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	feed := app.NewFeed()
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, time.Minute)

	var documents app.DocumentStore
	var publisher app.Publisher = feed
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		documents = infraredis.NewDocumentCache(redisClient, b.documents, quizTTL)

		broker := infraredis.NewFeedBroker(redisClient, feed)
		publisher = broker
		go func() {
			if err := broker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("submission feed stopped: %v", err)
			}
		}()
	} else {
		documents = memory.NewDocumentCache(b.documents, quizTTL)
	}

	authService, err := auth.NewService(
		cfg.Auth.JWTSecret,
		config.TTLDuration(cfg.Auth.TokenTTL, 2*time.Hour),
		auth.Account{Username: cfg.Auth.SuperAdmin.Username, Password: cfg.Auth.SuperAdmin.Password, Role: auth.RoleSuperAdmin},
		auth.Account{Username: cfg.Auth.ViewOnly.Username, Password: cfg.Auth.ViewOnly.Password, Role: auth.RoleViewOnly},
	)
	if err != nil {
		return err
	}

	quizzes := app.NewQuizService(documents, b.submissions, publisher)
	results := app.NewResultService(b.submissions, quizzes)

	handler := transport.NewRouter(transport.RouterConfig{
		Quizzes:       transport.NewQuizHandler(quizzes),
		Admin:         transport.NewAdminHandler(authService, results),
		Stream:        transport.NewWSHandler(feed),
		Auth:          authService,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		PublicDir:     cfg.Server.PublicDir,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
