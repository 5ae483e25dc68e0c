package database

import (
	"time"

	"sgo/internal/logger"
	"sgo/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.Company{},
		&model.User{},
		&model.CostCenter{},
		&model.Project{},
		&model.Contract{},
		&model.ContractInvoice{},
		&model.Employee{},
		&model.ProjectEmployee{},
		&model.Expense{},
		&model.AuditLog{},
	}
}

// Options returns the gorm settings shared by production and tests.
func Options() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.NewGormLogger(200 * time.Millisecond),
		TranslateError: true,
	}
}

// NewConnection opens the PostgreSQL pool and migrates the schema.
func NewConnection(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Options())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Warn("auto-migrate failed", zap.Error(err))
	}
	return db, nil
}

// Migrate creates or alters tables for Models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
