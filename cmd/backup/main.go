package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"research-api/config"
	"research-api/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	if err := cfg.ValidateBackup(); err != nil {
		log.Fatalf("Unvollständige Backup-Konfiguration: %v", err)
	}

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := storage.NewStore(db, logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	backups := storage.NewBackups(s3Client, cfg.BackupBucket, cfg.BackupPrefix, logging)

	job := func() {
		logging.Info("Starting backup...")
		if err := runBackup(ctx, store, backups, cfg.KeepBackups, logging); err != nil {
			logging.Error("Backup failed", zap.Error(err))
			return
		}
		logging.Info("Backup completed.")
	}

	// Ohne Zeitplan genau ein Lauf.
	if cfg.BackupSchedule == "" {
		if err := runBackup(ctx, store, backups, cfg.KeepBackups, logging); err != nil {
			logging.Fatal("Backup failed", zap.Error(err))
		}
		logging.Info("Backup completed.")
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BackupSchedule, job); err != nil {
		logging.Fatal("Invalid BACKUP_SCHEDULE", zap.String("schedule", cfg.BackupSchedule), zap.Error(err))
	}
	scheduler.Start()
	logging.Info("Backup scheduler started", zap.String("schedule", cfg.BackupSchedule))

	<-ctx.Done()
	logging.Info("Shutting down backup scheduler...")
	<-scheduler.Stop().Done()
}
