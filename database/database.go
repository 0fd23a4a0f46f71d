package database

import (
	"context"
	"fmt"
	"time"

	"epif/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDatabase opens the Postgres connection pool and checks it.
func ConnectDatabase(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	return Open(cfg.DSN(), log)
}

// Open connects to dsn with the service's gorm settings.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	newLogger := gormlogger.New(
		log,
		gormlogger.Config{
			SlowThreshold:             time.Millisecond * 500, // Log queries slower than 500ms
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 newLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(logrus.Fields{
		"max_open_conns": 25,
		"max_idle_conns": 10,
	}).Info("Connected to database successfully")
	return db, nil
}

// Ping checks the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// MonitorDBConnections warns when the pool runs close to its limit, until
// ctx is cancelled.
func MonitorDBConnections(ctx context.Context, db *gorm.DB, log *logrus.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				stats := sqlDB.Stats()
				if stats.InUse > stats.MaxOpenConnections*4/5 {
					log.WithFields(logrus.Fields{
						"in_use": stats.InUse,
						"idle":   stats.Idle,
						"open":   stats.OpenConnections,
					}).Warn("DB connection pool nearly exhausted")
				}
			}
		}
	}()
}
