package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects gorm to the backend database using the pool limits
// and log level from config
func OpenDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, ErrDatabaseNotConfigured
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Debug("Connected to database")
	return db, nil
}

// CloseDatabase releases the pool behind a gorm handle
func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

type PingResult struct {
	Status        string        `json:"status"`
	Latency       time.Duration `json:"latency"`
	ServerVersion string        `json:"server_version,omitempty"`
}

// PingDatabase checks raw connectivity with pgx, bypassing gorm
func PingDatabase(ctx context.Context, url string) (*PingResult, error) {
	if url == "" {
		return nil, ErrDatabaseNotConfigured
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	defer pool.Close()

	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		return &PingResult{Status: "down", Latency: time.Since(start)}, fmt.Errorf("failed to ping database: %w", err)
	}
	result := &PingResult{Status: "up", Latency: time.Since(start)}

	if err := pool.QueryRow(ctx, "SHOW server_version").Scan(&result.ServerVersion); err != nil {
		slog.Warn("Failed to read server version", "error", err)
	}
	return result, nil
}
