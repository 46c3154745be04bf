package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/azattello/cargo3589-server/internal/cache"
	"github.com/azattello/cargo3589-server/internal/config"
	"github.com/azattello/cargo3589-server/internal/database"
	"github.com/azattello/cargo3589-server/internal/logger"
	"github.com/azattello/cargo3589-server/internal/server"
	"github.com/azattello/cargo3589-server/internal/settings"
	"github.com/azattello/cargo3589-server/internal/store"
	"github.com/azattello/cargo3589-server/internal/upload"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer func() { _ = lg.Sync() }()
	for _, w := range warnings {
		lg.Warn(w)
	}

	db, err := database.Open(cfg.DatabaseDSN, lg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}

	settingsCache := cache.Settings(cache.Nop{})
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is optional; reads fall back to the database.
			lg.Warn("redis unreachable, continuing", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		defer client.Close()
		settingsCache = cache.NewRedisSettings(client, cfg.CacheTTL)
	}

	contractsDir := filepath.Join(cfg.UploadDir, "contracts")
	maxBytes := int64(cfg.MaxUploadMB) << 20
	contracts := upload.NewContractStore(afero.NewOsFs(), contractsDir, maxBytes)

	svc := settings.NewService(store.New(db), contracts, settingsCache, lg)

	app := server.New(server.Options{
		CORSOrigins: cfg.CORSOriginList(),
		// room for the multipart envelope around the file
		BodyLimit:    int(maxBytes) + 1<<20,
		ContractsDir: contractsDir,
		JWTSecret:    cfg.JWTSecret,
	}, svc, lg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		lg.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Error("shutdown", zap.Error(err))
		}
	}()

	lg.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		lg.Fatal("listen", zap.Error(err))
	}
}
