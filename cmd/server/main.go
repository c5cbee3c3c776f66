package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/livepoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/livepoll/internal/adapters/handler/ws"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/postgres"
	redisrepo "github.com/vncsmyrnk/livepoll/internal/adapters/repository/redis"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	pollRepo, voteRepo, userRepo, err := buildRepositories()
	if err != nil {
		slog.Error("failed to set up storage", "error", err)
		os.Exit(1)
	}

	hub := services.NewLiveHub()
	pollService := services.NewPollService(pollRepo)
	voteService := services.NewVoteService(pollRepo, voteRepo, hub)
	authService := services.NewAuthService(userRepo, os.Getenv("JWT_SECRET"))

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}

	handler := http.NewHandler(
		http.NewPollHandler(pollService, frontendURL),
		http.NewVoteHandler(voteService),
		http.NewAuthHandler(authService),
		ws.NewHandler(hub),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &stdhttp.Server{Addr: "0.0.0.0:" + port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func buildRepositories() (ports.PollRepository, ports.VoteRepository, ports.UserRepository, error) {
	switch store := os.Getenv("STORE"); store {
	case "", "postgres":
		db, err := sql.Open("postgres", dbConnString())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		return postgres.NewPollRepository(db), postgres.NewVoteRepository(db), postgres.NewUserRepository(db), nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: os.Getenv("REDIS_ADDR")})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		s := redisrepo.NewStore(client)
		// Accounts stay in process memory in redis mode.
		return s, s, memory.NewStore(), nil

	case "memory":
		s := memory.NewStore()
		return s, s, s, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE %q", store)
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
