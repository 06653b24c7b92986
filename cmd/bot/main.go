package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"srtbot/internal/bot"
	"srtbot/internal/config"
	"srtbot/internal/dedup"
	"srtbot/internal/downloader"
	"srtbot/internal/gemini"
	"srtbot/internal/webhook"
	"srtbot/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file first
	_ = godotenv.Load()

	// Initialize the logger before anything that logs
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting srtbot webhook service")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
		return
	}

	// Dedup store: shared Redis when configured, in-memory otherwise
	var store dedup.Store
	if cfg.Redis.Addr != "" {
		store, err = dedup.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, dedup.DefaultTTL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
			return
		}
		logger.Info("Using Redis-backed update dedup", zap.String("addr", cfg.Redis.Addr))
	} else {
		store = dedup.NewMemory()
		logger.Info("Using in-memory update dedup")
	}
	defer store.Close()

	tg, err := bot.NewTelegram(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("Failed to create Telegram client", zap.Error(err))
		return
	}

	ai := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	ytdlp := downloader.New(cfg.Downloader.Binary, cfg.Downloader.Timeout)
	processor := bot.NewProcessor(tg, ai, ytdlp)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: webhook.NewServer(store, processor, tg).Router(),
	}

	go func() {
		logger.Info("Listening for webhook calls", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}

	logger.Info("Webhook service shutdown complete")
}
