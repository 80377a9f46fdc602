package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/cruxmailweb/access-management-tool/internal/config"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

// Connect opens the database connection pool and runs migrations. The
// returned handle is passed explicitly to every component that needs
// persistence; there is no package-level connection state.
func Connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	}

	gormConfig := &gorm.Config{
		Logger: newGormLogger(log, "next_reminder_date <="), // keep sweep polling out of the query log
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		PrepareStmt: true,
	}

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("Database connection attempt %d failed", i+1)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.ApplicationUser{},
		&models.Reminder{},
		&models.ReminderEmail{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close drains the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
