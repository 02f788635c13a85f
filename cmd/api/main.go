package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/togglekeep/togglekeep/internal/config"
	"github.com/togglekeep/togglekeep/internal/database"
	"github.com/togglekeep/togglekeep/internal/logger"
	"github.com/togglekeep/togglekeep/internal/server"
	"github.com/togglekeep/togglekeep/internal/services"
	"github.com/togglekeep/togglekeep/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log with rotation, to both stdout and file
	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "togglekeep.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().Infof("starting %s %s on :%s", version.Name, version.Full(), cfg.HTTPPort)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	retention := services.NewRetentionService(db, cfg.AuditRetentionDays)
	if err := retention.Start(); err != nil {
		log.Fatalf("start audit retention: %v", err)
	}
	defer retention.Stop()

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
