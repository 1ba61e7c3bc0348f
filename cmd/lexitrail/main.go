package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gongmax/lexitrail/pkg/auth"
	"github.com/gongmax/lexitrail/pkg/config"
	"github.com/gongmax/lexitrail/pkg/db"
	"github.com/gongmax/lexitrail/pkg/logger"
	"github.com/gongmax/lexitrail/pkg/server"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	verifier := auth.NewGoogleVerifier(config.AppConfig.Auth.Audience)
	srv := server.New(server.Options{
		Verifier:       verifier,
		AllowedOrigins: config.AppConfig.Server.AllowedOrigins,
		RateLimit:      config.AppConfig.Server.RateLimit,
		RateBurst:      config.AppConfig.Server.RateBurst,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	logger.Info("starting server", "address", config.AppConfig.Server.Address)
	if err := srv.Start(config.AppConfig.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
