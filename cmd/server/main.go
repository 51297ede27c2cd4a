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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/diy-assistant/internal/chat"
	"github.com/suPer8Hu/diy-assistant/internal/config"
	"github.com/suPer8Hu/diy-assistant/internal/db"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/handlers"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
	"github.com/suPer8Hu/diy-assistant/internal/plan"
	"github.com/suPer8Hu/diy-assistant/internal/project"
	"github.com/suPer8Hu/diy-assistant/internal/session"
	"github.com/suPer8Hu/diy-assistant/internal/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel)
	if cfg.UsesDefaultJWTSecret() {
		slog.Warn("JWT_SECRET is not set; bearer tokens are signed with the development default")
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.SessionBackend == "redis" || cfg.TranscriptBackend == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	sessions, err := newSessionStore(cfg, rdb)
	if err != nil {
		return err
	}
	transcripts, err := newTranscriptStore(cfg, rdb)
	if err != nil {
		return err
	}

	reg := newRegistry(cfg)
	completer, err := newCompleter(ctx, cfg, reg)
	if err != nil {
		// keep serving; chat and planning fall back without a provider
		slog.Warn("ai provider unavailable", "provider", cfg.AIProvider, "known", reg.Names(), "err", err)
	}

	fallback, err := chat.LoadFallback(cfg.FallbackRepliesPath)
	if err != nil {
		return err
	}

	userSvc := users.NewService(users.NewRepo(gdb))
	projectSvc := project.NewService(project.NewGormStore(gdb), plan.NewGenerator(completer))
	chatMgr := chat.NewManager(transcripts, completer, chat.Options{
		ContextWindowSize: cfg.ChatContextWindowSize,
		HistoryLimit:      cfg.ChatHistoryLimit,
		Fallback:          fallback,
	})

	h := handlers.NewHandler(cfg, userSvc, projectSvc, chatMgr, sessions)
	r, err := httpapi.NewRouter(h)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started",
			"addr", cfg.HTTPAddr,
			"db_driver", cfg.DBDriver,
			"session_backend", cfg.SessionBackend,
			"transcript_backend", cfg.TranscriptBackend,
			"ai_provider", cfg.AIProvider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSessionStore(cfg config.Config, rdb *redis.Client) (session.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		return session.NewRedisStore(rdb, cfg.RedisPrefix, cfg.SessionTTL), nil
	case "memory":
		return session.NewMemoryStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND=%q", cfg.SessionBackend)
	}
}

func newTranscriptStore(cfg config.Config, rdb *redis.Client) (chat.TranscriptStore, error) {
	switch cfg.TranscriptBackend {
	case "redis":
		return chat.NewRedisTranscriptStore(rdb, cfg.RedisPrefix, cfg.TranscriptTTL), nil
	case "file":
		return chat.NewFileTranscriptStore(cfg.TranscriptDir)
	default:
		return nil, fmt.Errorf("unsupported TRANSCRIPT_BACKEND=%q", cfg.TranscriptBackend)
	}
}
