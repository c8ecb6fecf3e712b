// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"health-ai/internal/assistant"
	"health-ai/internal/bot"
	"health-ai/internal/config"
	"health-ai/internal/db"
	"health-ai/internal/gpt"
	"health-ai/internal/server"
	"health-ai/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatal("Failed to load config", "error", err)
	}

	l := logger.ForMode(cfg.Log.Mode)
	defer l.Sync()
	l.Info("Starting health-ai service...", "store", cfg.Store.Driver, "model", cfg.LLM.Model)

	if err := cfg.Validate(); err != nil {
		l.Fatal("Invalid configuration", "error", err)
	}
	if cfg.Log.Mode != "dev" && cfg.Log.Mode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize store connection with retry
	var store db.Store
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		store, err = db.Open(cfg)
		if err == nil {
			break
		}
		l.Error("Failed to connect to store, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if store == nil {
		l.Fatal("Failed to connect to store after multiple attempts", "error", err)
	}

	gptClient := gpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL).
		WithModel(cfg.LLM.Model).
		WithTemperature(cfg.LLM.Temperature)

	profiles := assistant.NewProfiles(store)
	dispatcher := assistant.NewDispatcher(profiles, gptClient, assistant.NewWriter(store), l)

	httpServer := server.New(cfg.Server.Port, store, profiles, dispatcher, l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	ctx, cancelBot := context.WithCancel(context.Background())
	defer cancelBot()

	var telegramBot *bot.TelegramBot
	if cfg.Telegram.Token != "" {
		telegramBot, err = bot.NewTelegramBot(cfg.Telegram.Token, dispatcher, profiles, l)
		if err != nil {
			l.Fatal("Failed to create Telegram bot", "error", err)
		}
		if err := telegramBot.Start(ctx); err != nil {
			l.Fatal("Failed to start Telegram bot", "error", err)
		}
	}

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Error("Error during HTTP server shutdown", "error", err)
	}

	if telegramBot != nil {
		if err := telegramBot.Stop(shutdownCtx); err != nil {
			l.Error("Error during bot shutdown", "error", err)
		}
	}
	cancelBot()

	if err := store.Close(shutdownCtx); err != nil {
		l.Error("Error closing store", "error", err)
	}

	l.Info("Service stopped")
}
