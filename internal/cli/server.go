package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-hub-service/internal/config"
	"trivia-hub-service/internal/game"
	"trivia-hub-service/internal/infra/memory"
	pgloader "trivia-hub-service/internal/infra/postgres"
	rediscache "trivia-hub-service/internal/infra/redis"
	"trivia-hub-service/internal/notify"
	"trivia-hub-service/internal/questions"
	transport "trivia-hub-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the orchestrator.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia orchestrator",
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

	fileSource := questions.NewFileSource(cfg.Questions.Dir)

	var source questions.ContentSource = fileSource
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		source = rediscache.NewQuestionCache(redisClient, source, questionTTL)
	} else {
		source = memory.NewQuestionCache(source, questionTTL)
	}

	bank := questions.NewBank(source)

	var notifier game.Notifier = notify.NewLogNotifier()
	var haClient *notify.Client
	if cfg.HomeAssistant.URL != "" {
		haClient, err = notify.Dial(ctx, cfg.HomeAssistant.URL, cfg.HomeAssistant.Token, cfg.HomeAssistant.Devices)
		if err != nil {
			return err
		}
		defer haClient.Close()
		notifier = haClient
	}

	session := game.NewSession(bank, notifier)

	if haClient != nil {
		haClient.OnAction(func(actionID string) {
			label, player, err := game.ParseAction(actionID)
			if err != nil {
				log.Printf("ignoring action %q: %v", actionID, err)
				return
			}
			if err := session.CheckAnswer(context.Background(), player, label); err != nil {
				log.Printf("answer from player %d (%s): %v", player, label, err)
			}
		})
	}

	handler := transport.NewHandler(session, fileSource)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting trivia orchestrator on :%s", finalPort)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// let in-flight notification chains finish before dropping the connection
	session.Wait()
	return nil
}
