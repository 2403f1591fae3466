package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenggwsx/DocuMind/internal/auth"
	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/logging"
	"github.com/fenggwsx/DocuMind/internal/server"
	"github.com/fenggwsx/DocuMind/internal/storage/files"
	"github.com/fenggwsx/DocuMind/internal/storage/sqlite"
)

func main() {
	cfg := config.LoadServerConfig()
	logger := logging.Init(cfg.LogLevel)

	store, err := sqlite.NewStore(cfg.Database)
	if err != nil {
		logger.Error("init storage", slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	fileStore, err := files.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Error("init upload dir", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := server.NewApp(cfg, store, fileStore, revoker(ctx, cfg, logger), logger)
	if err := app.Run(ctx); err != nil {
		logger.Error("server shutdown", slog.Any("err", err))
		os.Exit(1)
	}
}

// revoker prefers Redis so revocations survive restarts, and falls back to
// process memory when Redis is not configured or unreachable.
func revoker(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) auth.TokenRevoker {
	if cfg.RedisAddr == "" {
		return auth.NewMemoryRevoker()
	}
	r := auth.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using in-memory token revocation", slog.String("addr", cfg.RedisAddr), slog.Any("err", err))
		_ = r.Close()
		return auth.NewMemoryRevoker()
	}
	logger.Info("token revocation backed by redis", slog.String("addr", cfg.RedisAddr))
	return r
}
