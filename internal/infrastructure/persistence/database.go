package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a PostgreSQL connection pool and verifies it with a ping
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(zapLogger, logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// NewDatabaseFromDialector wraps an arbitrary GORM dialector, used with sqlite and sqlmock in tests
func NewDatabaseFromDialector(dialector gorm.Dialector, zapLogger *zap.Logger) (*Database, error) {
	db, err := gorm.Open(dialector, gormConfig(zapLogger, "silent"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Database{DB: db}, nil
}

func gormConfig(zapLogger *zap.Logger, logLevel string) *gorm.Config {
	var gl gormlogger.Interface = gormlogger.Discard
	if zapLogger != nil {
		gl = logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(logLevel), 0)
	}
	return &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	}
}

// AutoMigrate creates the storefront tables from the persistence models.
// Production schemas are managed by the SQL migrations; this is for tests and local runs.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&models.ProductModel{},
		&models.UserModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
